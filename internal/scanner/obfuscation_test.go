package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func TestObfuscationScanner_HighEntropy(t *testing.T) {
	dir := t.TempDir()
	// A uniform distribution over the 94 printable-ASCII symbols yields
	// entropy ~= log2(94) = 6.55 bits/byte, comfortably between the
	// warning (6.2) and critical (6.8) thresholds.
	var b strings.Builder
	for i := 0; i < 4; i++ {
		for c := 33; c <= 126; c++ {
			b.WriteByte(byte(c))
		}
	}
	writeFile(t, dir, "payload.js", b.String()+"\n")

	s := NewObfuscationScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	found := false
	for _, f := range result.Findings {
		if strings.Contains(f.Message, "entropy") {
			found = true
		}
	}
	if !found {
		t.Error("expected a high-entropy finding")
	}
}

func TestObfuscationScanner_HexEscapeRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", `const s = "\x68\x65\x6c\x6c\x6f\x77\x6f\x72\x6c\x64";`+"\n")

	s := NewObfuscationScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	found := false
	for _, f := range result.Findings {
		if strings.Contains(f.Message, "hex-escape") {
			found = true
		}
	}
	if !found {
		t.Error("expected a hex-escape-run finding")
	}
}

func TestObfuscationScanner_StringArrayRotation(t *testing.T) {
	dir := t.TempDir()
	var elements []string
	for i := 0; i < 60; i++ {
		elements = append(elements, `"a"`)
	}
	content := "var _0x1234 =\n[" + strings.Join(elements, ",") + "];\n" +
		"function decode(i){return _0x1234[i];}\n" +
		"_0x1234.push(_0x1234.shift());\n"
	writeFile(t, dir, "strings.js", content)

	s := NewObfuscationScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})

	found := false
	for _, f := range result.Findings {
		if strings.Contains(f.Message, "rotation pattern") && f.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical string-array rotation finding")
	}
}

func TestObfuscationScanner_CleanCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.js", "function add(a, b) {\n  return a + b;\n}\nmodule.exports = add;\n")

	s := NewObfuscationScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}, Dir: dir})
	if len(result.Findings) != 0 {
		t.Errorf("expected clean code to produce no findings, got %d", len(result.Findings))
	}
}
