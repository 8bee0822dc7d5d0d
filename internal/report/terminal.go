package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yourorg/pkgaudit/internal/scanner"
)

const boxWidth = 70

// renderTerminal is the default, no-format rendering: a box-drawn
// executive summary followed by per-scanner detail. Grounded on the
// teacher's renderTerminal (internal/reporter/reporter.go) box-drawing
// structure, stripped of ANSI color codes (out of scope per this spec's
// §1 terminal-rendering non-goal).
func renderTerminal(w io.Writer, r Report) error {
	printBoxTop(w)
	printBoxLine(w, fmt.Sprintf("%s@%s", r.Package.Name, r.Package.Version))
	printBoxLine(w, fmt.Sprintf("Score: %d/100  Grade: %s", r.Score, r.Grade))
	printBoxLine(w, fmt.Sprintf("Verdict: %s", r.Verdict))
	printBoxBottom(w)
	fmt.Fprintln(w)

	crit, warn, info := 0, 0, 0
	for _, result := range r.Scanners {
		for _, f := range result.Findings {
			switch f.Severity {
			case scanner.SeverityCritical:
				crit++
			case scanner.SeverityWarning:
				warn++
			default:
				info++
			}
		}
	}
	fmt.Fprintf(w, "Findings: %d critical, %d warning, %d info\n\n", crit, warn, info)

	fmt.Fprintf(w, "Package info\n")
	fmt.Fprintf(w, "  license:      %s\n", valueOr(r.Package.License, "unknown"))
	fmt.Fprintf(w, "  repository:   %s\n", valueOr(r.Package.RepositoryURL, "none declared"))
	fmt.Fprintf(w, "  dependencies: %d direct\n", len(r.Package.Dependencies))
	if len(r.Package.LifecycleScripts) > 0 {
		fmt.Fprintf(w, "  install scripts: yes\n")
	} else {
		fmt.Fprintf(w, "  install scripts: none\n")
	}
	fmt.Fprintln(w)

	if r.GitHub != nil && r.GitHub.Found {
		fmt.Fprintf(w, "Repository health\n")
		fmt.Fprintf(w, "  %s/%s — %d stars, archived: %v, publisher matches owner: %v\n\n", r.GitHub.Owner, r.GitHub.Name, r.GitHub.Stars, r.GitHub.Archived, r.GitHub.PublisherMatchesOwner)
	}

	for _, result := range r.Scanners {
		fmt.Fprintf(w, "── %s ──\n", result.Scanner)
		fmt.Fprintf(w, "%s\n", result.Summary)
		for _, f := range result.Findings {
			loc := ""
			if f.File != "" {
				loc = " " + f.File
				if f.Line > 0 {
					loc += fmt.Sprintf(":%d", f.Line)
				}
			}
			fmt.Fprintf(w, "  [%s] %s%s\n", severityLabel(f.Severity), f.Message, loc)
		}
		fmt.Fprintln(w)
	}

	if r.PolicyPassed != nil && !*r.PolicyPassed {
		fmt.Fprintf(w, "Policy gate: FAILED\n")
		for _, gate := range r.PolicyTripped {
			fmt.Fprintf(w, "  - %s\n", gate)
		}
	}

	return nil
}

func printBoxTop(w io.Writer) {
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", boxWidth))
}

func printBoxBottom(w io.Writer) {
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", boxWidth))
}

func printBoxLine(w io.Writer, text string) {
	if len(text) > boxWidth-2 {
		text = text[:boxWidth-2]
	}
	fmt.Fprintf(w, "| %-*s |\n", boxWidth-2, text)
}
