// Package report assembles the final Report value (§3, §4.14) and renders
// it in JSON, Markdown, PDF, or the default terminal-oriented plain-text
// form.
package report

import (
	"io"
	"time"

	"github.com/yourorg/pkgaudit/internal/diffengine"
	"github.com/yourorg/pkgaudit/internal/provider"
	"github.com/yourorg/pkgaudit/internal/repohealth"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

// Formats supported by Render, matching §4.14.
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatSARIF    = "sarif"
)

// Report is the exact machine schema §6 names, in canonical field order.
type Report struct {
	Package  *provider.Metadata  `json:"package"`
	Scanners []scanner.Result    `json:"scanners"`
	GitHub   *repohealth.Health  `json:"github"`
	Diff     *diffengine.Result  `json:"diff"`
	Score    int                 `json:"score"`
	Grade    string              `json:"grade"`
	Verdict  string              `json:"verdict"`
	Duration int64               `json:"duration"` // milliseconds

	// PolicyPassed and PolicyTripped are populated only when a Policy Gate
	// (§4.13) is configured; omitted from JSON otherwise since a report
	// produced with no gate configured has no opinion on the question.
	PolicyPassed  *bool    `json:"policy_passed,omitempty"`
	PolicyTripped []string `json:"policy_tripped,omitempty"`
}

// New builds a Report from the pipeline's collected components.
func New(pkg *provider.Metadata, scanners []scanner.Result, health *repohealth.Health, diff *diffengine.Result, score int, grade, verdict string, duration time.Duration) Report {
	return Report{
		Package:  pkg,
		Scanners: scanners,
		GitHub:   health,
		Diff:     diff,
		Score:    score,
		Grade:    grade,
		Verdict:  verdict,
		Duration: duration.Milliseconds(),
	}
}

// Render writes the report to w in the requested format. Grounded on the
// teacher's reporter.Reporter.Render dispatch table (internal/reporter/
// reporter.go), narrowed to this spec's three renderings plus terminal.
func Render(w io.Writer, format string, r Report) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, r)
	case FormatMarkdown:
		return renderMarkdown(w, r)
	case FormatPDF:
		return renderPDF(w, r)
	case FormatSARIF:
		return renderSARIF(w, r)
	default:
		return renderTerminal(w, r)
	}
}
