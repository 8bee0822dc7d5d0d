// Package diffengine compares a published artifact's file tree against the
// source repository it claims to be built from (§4.11): what's present in
// the artifact but not the repo, and what differs in content.
package diffengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourorg/pkgaudit/internal/extractor"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

// Result mirrors SPEC_FULL.md §3's DiffResult value object.
type Result struct {
	Performed        bool     `json:"performed"`
	UnexpectedFiles  []string `json:"unexpected_files,omitempty"`
	ExpectedBuildFiles []string `json:"expected_build_files,omitempty"`
	ModifiedFiles    []string `json:"modified_files,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// alwaysDiffer names files that legitimately differ between the published
// artifact and the source repository (the manifest gets rewritten at
// publish time, lockfiles are ecosystem-local) and are excluded from the
// hash-comparison pass.
var alwaysDiffer = map[string]bool{
	"package.json":     true,
	".npmignore":       true,
	".gitignore":       true,
	"package-lock.json": true,
	"npm-shrinkwrap.json": true,
	"yarn.lock":        true,
	"pnpm-lock.yaml":   true,
}

// Engine downloads a repository's HEAD tarball and diffs it against an
// already-extracted artifact tree. Grounded on internal/tarball/download.go
// (via internal/extractor, generalized in this repo to strip an arbitrary
// shared top-level directory rather than only npm's fixed "package/"
// prefix) for the download/extract mechanics this component reuses
// verbatim.
type Engine struct {
	fetchTarballURL func(ctx context.Context, repoURL string) (string, error)
}

func NewEngine(fetchTarballURL func(ctx context.Context, repoURL string) (string, error)) *Engine {
	return &Engine{fetchTarballURL: fetchTarballURL}
}

// Diff performs the comparison. Any failure at any step degrades to
// Result{Performed: false, Error: ...} — never fatal to the pipeline.
func (e *Engine) Diff(ctx context.Context, repoURL, artifactDir string) Result {
	tarballURL, err := e.fetchTarballURL(ctx, repoURL)
	if err != nil {
		return Result{Performed: false, Error: err.Error()}
	}

	repoTree, err := extractor.Download(ctx, tarballURL, "", "pkgaudit-repo-")
	if err != nil {
		return Result{Performed: false, Error: err.Error()}
	}
	defer repoTree.Cleanup()

	artifactFiles, err := walkFileSet(artifactDir)
	if err != nil {
		return Result{Performed: false, Error: err.Error()}
	}

	repoFiles := make(map[string]bool, len(repoTree.Files))
	for _, f := range repoTree.Files {
		if skipDiffPath(f.Path) {
			continue
		}
		repoFiles[f.Path] = true
	}

	var unexpected, expectedBuild []string
	for path := range artifactFiles {
		if repoFiles[path] {
			continue
		}
		if scanner.IsBuildArtifact(path, func(candidate string) bool { return repoFiles[candidate] }) {
			expectedBuild = append(expectedBuild, path)
		} else {
			unexpected = append(unexpected, path)
		}
	}

	var modified []string
	for path := range artifactFiles {
		if !repoFiles[path] {
			continue
		}
		if alwaysDiffer[filepath.Base(path)] {
			continue
		}

		artifactHash, err1 := extractor.HashFile(filepath.Join(artifactDir, path))
		repoHash, err2 := extractor.HashFile(filepath.Join(repoTree.Dir, path))
		if err1 != nil || err2 != nil {
			continue
		}
		if artifactHash != repoHash {
			modified = append(modified, path)
		}
	}

	return Result{
		Performed:        true,
		UnexpectedFiles:  unexpected,
		ExpectedBuildFiles: expectedBuild,
		ModifiedFiles:    modified,
	}
}

func walkFileSet(dir string) (map[string]bool, error) {
	files := map[string]bool{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if skipDiffPath(rel) {
			return nil
		}
		files[rel] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking artifact tree: %w", err)
	}
	return files, nil
}

// skipDiffPath applies §4.11's "skip hidden directories and nested
// dependency directories in both" rule.
func skipDiffPath(relPath string) bool {
	if scanner.IsAlwaysSkip(relPath) {
		return true
	}
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}
