package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/pkgaudit/internal/provider"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

func sampleReport() Report {
	r := New(
		&provider.Metadata{Name: "left-pad", Version: "1.3.0", License: "MIT", RepositoryURL: "https://github.com/left-pad/left-pad"},
		[]scanner.Result{
			scanner.NewResult("static", []scanner.Finding{
				{Scanner: "static", Severity: scanner.SeverityWarning, Message: "outbound network request via fetch()", File: "index.js", Line: 4},
			}, "1 warning finding"),
		},
		nil, nil, 92, "A", "CLEAN", 120*time.Millisecond,
	)
	passed := true
	r.PolicyPassed = &passed
	return r
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	if decoded.Grade != "A" || decoded.Score != 92 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatMarkdown, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "left-pad@1.3.0") {
		t.Error("expected the markdown output to name the package")
	}
	if !strings.Contains(out, "WARNING") {
		t.Error("expected the markdown output to include the warning finding")
	}
}

func TestRender_SARIF(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatSARIF, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded sarifLog
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid SARIF JSON output: %v", err)
	}
	if len(decoded.Runs) != 1 {
		t.Fatalf("expected exactly one run, got %d", len(decoded.Runs))
	}
	run := decoded.Runs[0]
	if len(run.Results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(run.Results))
	}
	if run.Results[0].Level != "warning" {
		t.Errorf("expected a warning finding to map to SARIF level warning, got %q", run.Results[0].Level)
	}
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "static" {
		t.Errorf("expected a single rule entry for the static scanner, got %+v", run.Tool.Driver.Rules)
	}
}

func TestRender_Terminal(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTerminal, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "left-pad") {
		t.Error("expected the terminal output to name the package")
	}
	if !strings.Contains(out, "92") {
		t.Error("expected the terminal output to include the score")
	}
}

func TestRender_UnknownFormatDefaultsToTerminal(t *testing.T) {
	var terminalBuf, unknownBuf bytes.Buffer
	if err := Render(&terminalBuf, FormatTerminal, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if err := Render(&unknownBuf, "nonsense", sampleReport()); err != nil {
		t.Fatal(err)
	}
	if terminalBuf.String() != unknownBuf.String() {
		t.Error("expected an unrecognized format to fall back to the terminal rendering")
	}
}
