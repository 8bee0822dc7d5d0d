package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourorg/pkgaudit/internal/extractor"
)

// manifest mirrors the package.json fields this auditor cares about. A
// local artifact has no registry document to fall back on, so whatever
// the manifest omits simply stays zero-valued on the resulting Metadata.
//
// Grounded on the teacher's internal/project/project.go PackageJSON,
// narrowed to the fields Metadata actually carries (no separate
// Dependency slice — this repo's Metadata already maps name to version
// range directly, same shape as the manifest's own dependency maps).
type manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	License         string            `json:"license"`
	Homepage        string            `json:"homepage"`
	Dependencies    map[string]string `json:"dependencies"`
	OptionalDeps    map[string]string `json:"optionalDependencies"`
	Scripts         map[string]string `json:"scripts"`
	Bin             interface{}       `json:"bin,omitempty"`
	Repository      interface{}       `json:"repository,omitempty"`
}

// FetchLocal resolves a local-artifact Specifier (a directory, or a
// .tgz/.tar.gz file already on disk) into a Resolved value, without any
// registry round-trip. This is the local counterpart to NPMProvider.Fetch
// named by §1's specifier grammar ("any path beginning with ./, ../, /,
// or ending in .tgz / .tar.gz").
func FetchLocal(spec Specifier) (*Resolved, error) {
	info, err := os.Stat(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving local artifact %q: %w", spec.Path, err)
	}

	var tree *extractor.Tree
	if info.IsDir() {
		tree, err = treeFromDir(spec.Path)
	} else if strings.HasSuffix(spec.Path, ".tgz") || strings.HasSuffix(spec.Path, ".tar.gz") {
		tree, err = extractor.ExtractLocalTarball(spec.Path, "pkgaudit-local")
	} else {
		return nil, fmt.Errorf("local artifact %q is neither a directory nor a .tgz/.tar.gz file", spec.Path)
	}
	if err != nil {
		return nil, err
	}

	meta := buildLocalMetadata(tree)
	return &Resolved{Metadata: meta, Tree: tree}, nil
}

// treeFromDir builds a Tree in place over an existing directory rather
// than copying it into a scratch directory. Tree.Owned stays false, so
// the pipeline's unconditional deferred Cleanup() leaves the caller's
// directory untouched.
func treeFromDir(root string) (*extractor.Tree, error) {
	tree := &extractor.Tree{Dir: root}
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if fi.Name() == "node_modules" || fi.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree.Files = append(tree.Files, extractor.File{Path: filepath.ToSlash(rel), Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking local directory %q: %w", root, err)
	}
	return tree, nil
}

func buildLocalMetadata(tree *extractor.Tree) *Metadata {
	m := &Metadata{FileCount: len(tree.Files)}
	for _, f := range tree.Files {
		m.UnpackedSize += f.Size
	}

	data, err := os.ReadFile(filepath.Join(tree.Dir, "package.json"))
	if err != nil {
		return m
	}

	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return m
	}

	m.Name = man.Name
	m.Version = man.Version
	m.Description = man.Description
	m.License = man.License
	m.Homepage = man.Homepage
	m.Dependencies = man.Dependencies
	m.OptionalDependencies = man.OptionalDeps
	m.LifecycleScripts = man.Scripts
	m.HasBinEntry = man.Bin != nil

	switch repo := man.Repository.(type) {
	case string:
		m.RepositoryURL = repo
	case map[string]interface{}:
		if url, ok := repo["url"].(string); ok {
			m.RepositoryURL = url
		}
	}

	return m
}
