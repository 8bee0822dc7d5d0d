package provider

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFetchLocal_Directory(t *testing.T) {
	dir := t.TempDir()
	manifestJSON := `{
		"name": "local-pkg",
		"version": "0.0.1",
		"dependencies": {"left-pad": "^1.0.0"},
		"scripts": {"postinstall": "node setup.js"},
		"repository": {"type": "git", "url": "https://github.com/example/local-pkg"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifestJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("module.exports = {};"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "node_modules", "dep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "node_modules", "dep", "index.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := FetchLocal(Specifier{Local: true, Path: dir})
	if err != nil {
		t.Fatal(err)
	}

	if resolved.Metadata.Name != "local-pkg" || resolved.Metadata.Version != "0.0.1" {
		t.Errorf("unexpected metadata: %+v", resolved.Metadata)
	}
	if resolved.Metadata.RepositoryURL != "https://github.com/example/local-pkg" {
		t.Errorf("expected repository URL to be parsed from the object form, got %q", resolved.Metadata.RepositoryURL)
	}
	if resolved.Metadata.LifecycleScripts["postinstall"] != "node setup.js" {
		t.Errorf("expected postinstall script to be captured, got %+v", resolved.Metadata.LifecycleScripts)
	}

	for _, f := range resolved.Tree.Files {
		if f.Path == "node_modules/dep/index.js" {
			t.Error("expected node_modules to be skipped when walking a local directory")
		}
	}

	// Cleanup must be a no-op for a caller-owned directory.
	resolved.Tree.Cleanup()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected the local directory to survive Cleanup(), got %v", err)
	}
}

func TestFetchLocal_MissingPathErrors(t *testing.T) {
	if _, err := FetchLocal(Specifier{Local: true, Path: filepath.Join(t.TempDir(), "does-not-exist")}); err == nil {
		t.Error("expected a missing local path to error")
	}
}

func TestFetchLocal_UnrecognizedFileKindErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-tarball.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := FetchLocal(Specifier{Local: true, Path: path}); err == nil {
		t.Error("expected a non-directory, non-tarball local path to error")
	}
}
