package scanner

import (
	"context"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func TestBinaryScanner_FlagsNativeAddon(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "build/Release/addon.node", "\x7fELF")

	s := NewBinaryScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	if result.Findings[0].Severity != SeverityWarning {
		t.Errorf("expected warning severity, got %v", result.Findings[0].Severity)
	}
}

func TestBinaryScanner_IgnoresSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "module.exports = {};\n")

	s := NewBinaryScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})
	if len(result.Findings) != 0 {
		t.Error("expected no findings for a source-only package")
	}
}

func TestBinaryScanner_SkipsNodeModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node_modules/dep/addon.node", "\x7fELF")

	s := NewBinaryScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})
	if len(result.Findings) != 0 {
		t.Error("expected node_modules to be skipped")
	}
}
