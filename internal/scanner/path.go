package scanner

import (
	"path"
	"regexp"
	"strings"
)

// NestedDependencyDir is the fixed segment name the source ecosystem uses
// for its nested-dependency convention. Any path containing this segment is
// always skipped by every file-walking scanner.
const NestedDependencyDir = "node_modules"

var (
	testDirSegments = map[string]bool{
		"__tests__":    true,
		"tests":        true,
		"test":         true,
		"fixtures":     true,
		"__fixtures__": true,
		"__mocks__":    true,
	}

	testFilePattern = regexp.MustCompile(`(?i)\.(test|spec)\.[mc]?[jt]sx?$`)

	buildDirs = map[string]bool{
		"dist":      true,
		"lib":       true,
		"build":     true,
		".next":     true,
		"out":       true,
		"prebuilds": true,
		"compiled":  true,
		"esm":       true,
		"cjs":       true,
	}

	nativeAddonExts = map[string]bool{
		".node": true, ".so": true, ".dll": true, ".dylib": true,
		".exe": true, ".bin": true, ".wasm": true,
	}
)

// IsAlwaysSkip reports whether any path segment is the nested-dependency
// directory convention. Scanners must never descend into such a path.
func IsAlwaysSkip(relPath string) bool {
	for _, seg := range splitSegments(relPath) {
		if seg == NestedDependencyDir {
			return true
		}
	}
	return false
}

// IsTestPath reports whether relPath names test-only source, per §4.1.
// It depends only on relPath's segments, so it is stable across repeated
// calls on the same input regardless of which other paths were classified
// first or concurrently.
func IsTestPath(relPath string) bool {
	for _, seg := range splitSegments(relPath) {
		if testDirSegments[seg] {
			return true
		}
	}
	return testFilePattern.MatchString(path.Base(relPath))
}

// IsDeclarationOnly reports whether relPath is a TypeScript ambient
// declaration file (`.d.ts`/`.d.mts`/`.d.cts`).
func IsDeclarationOnly(relPath string) bool {
	base := path.Base(relPath)
	return strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts")
}

// IsNativeAddonExt reports whether ext (including the leading dot, any
// case) names a non-reviewable compiled binary extension.
func IsNativeAddonExt(ext string) bool {
	return nativeAddonExts[strings.ToLower(ext)]
}

// IsBuildArtifact implements the diff engine's build-artifact heuristic
// (§4.1): artifactPath is presumed compiled output if it falls under a
// known build-output directory, has a declaration/map/native-addon
// extension, or has a same-named TypeScript source in the repo tree
// (hasSource reports that last case; callers supply it since it requires
// knowledge of the companion source repository's file set).
func IsBuildArtifact(artifactPath string, hasSource func(tsCandidate string) bool) bool {
	segs := splitSegments(artifactPath)
	if len(segs) > 0 && buildDirs[segs[0]] {
		return true
	}

	ext := path.Ext(artifactPath)
	if IsDeclarationOnly(artifactPath) || ext == ".map" || IsNativeAddonExt(ext) {
		return true
	}

	if ext == ".js" || ext == ".mjs" || ext == ".cjs" {
		for _, tsExt := range []string{".ts", ".tsx", ".mts", ".cts"} {
			base := strings.TrimSuffix(artifactPath, ext)
			if hasSource(base+tsExt) || hasSource("src/"+base+tsExt) {
				return true
			}
		}
	}

	return false
}

func splitSegments(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
