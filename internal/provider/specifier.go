package provider

import "strings"

// Specifier is a parsed package specifier (§6 grammar).
type Specifier struct {
	Name    string
	Version string // empty means "resolve the latest dist-tag"
	Local   bool   // true for a filesystem path or .tgz/.tar.gz artifact
	Path    string // populated when Local is true
}

// ParseSpecifier implements the grammar:
//
//	name              unscoped, unversioned
//	name@version      unscoped, versioned
//	@scope/name        scoped, unversioned
//	@scope/name@version scoped, versioned (split at the LAST '@')
//	./path, ../path, /path, *.tgz, *.tar.gz   local artifact
func ParseSpecifier(raw string) Specifier {
	if isLocalArtifact(raw) {
		return Specifier{Local: true, Path: raw}
	}

	scoped := strings.HasPrefix(raw, "@")

	lastAt := strings.LastIndex(raw, "@")
	// For a scoped name the leading '@' at index 0 doesn't count as a
	// version separator.
	if scoped && lastAt == 0 {
		return Specifier{Name: raw}
	}
	if lastAt <= 0 {
		return Specifier{Name: raw}
	}

	return Specifier{Name: raw[:lastAt], Version: raw[lastAt+1:]}
}

func isLocalArtifact(raw string) bool {
	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") || strings.HasPrefix(raw, "/") {
		return true
	}
	return strings.HasSuffix(raw, ".tgz") || strings.HasSuffix(raw, ".tar.gz")
}
