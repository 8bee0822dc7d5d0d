package diffengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSkipDiffPath(t *testing.T) {
	cases := map[string]bool{
		"node_modules/x.js": true,
		".git/HEAD":         true,
		".github/workflow":  true,
		"src/index.js":      false,
		"src/.hidden/x.js":  true,
	}
	for path, want := range cases {
		if got := skipDiffPath(path); got != want {
			t.Errorf("skipDiffPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWalkFileSet(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "index.js"), "module.exports = {};")
	mustWrite(t, filepath.Join(dir, "node_modules", "dep", "index.js"), "ignored")
	mustWrite(t, filepath.Join(dir, ".git", "HEAD"), "ignored")

	files, err := walkFileSet(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !files["index.js"] {
		t.Error("expected index.js to be included")
	}
	if files["node_modules/dep/index.js"] {
		t.Error("expected node_modules to be excluded")
	}
	if files[".git/HEAD"] {
		t.Error("expected hidden directories to be excluded")
	}
}

func TestDiff_TarballURLFailureDegrades(t *testing.T) {
	engine := NewEngine(func(ctx context.Context, repoURL string) (string, error) {
		return "", errors.New("unresolvable repository URL")
	})
	result := engine.Diff(context.Background(), "https://github.com/owner/repo", t.TempDir())
	if result.Performed {
		t.Error("expected a tarball-URL failure to degrade to Performed: false")
	}
	if result.Error == "" {
		t.Error("expected an error message to be recorded")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
