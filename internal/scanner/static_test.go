package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStaticScanner_DetectsEval(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "eval('console.log(1)')\n")

	s := NewStaticScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	found := false
	for _, f := range result.Findings {
		if f.Severity == SeverityCritical && f.File == "index.js" {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical finding for eval() usage")
	}
}

func TestStaticScanner_SkipsStringsAndComments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "// eval('danger') mentioned only in a comment\nconst msg = \"call eval() if you dare\";\n")

	s := NewStaticScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	for _, f := range result.Findings {
		if f.Severity == SeverityCritical {
			t.Errorf("expected string/comment context to downgrade severity, got critical: %s", f.Message)
		}
	}
}

func TestStaticScanner_CLIToolDowngradesExpectedPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "const { execFile } = require('child_process');\nexecFile('ls');\n")

	s := NewStaticScanner()
	cliResult := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{HasBinEntry: true}, Dir: dir})
	libResult := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{HasBinEntry: false}, Dir: dir})

	cliHasCritical, libHasCritical := false, false
	for _, f := range cliResult.Findings {
		if f.Severity == SeverityCritical {
			cliHasCritical = true
		}
	}
	for _, f := range libResult.Findings {
		if f.Severity == SeverityCritical {
			libHasCritical = true
		}
	}
	if cliHasCritical {
		t.Error("expected CLI tool to downgrade execFile/child_process findings")
	}
	if !libHasCritical {
		t.Error("expected non-CLI package to keep execFile/child_process findings critical")
	}
}

func TestStaticScanner_IgnoresTestAndDeclarationFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "__tests__/eval.test.js", "eval('x')\n")
	writeFile(t, dir, "index.d.ts", "eval('x')\n")

	s := NewStaticScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})
	if len(result.Findings) != 0 {
		t.Errorf("expected test/declaration files to be skipped, got %d findings", len(result.Findings))
	}
}

func TestStaticScanner_EmptyArtifactDir(t *testing.T) {
	s := NewStaticScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: ""})
	if !result.Passed {
		t.Error("expected an empty artifact directory to pass trivially")
	}
}
