package report

import (
	"fmt"
	"io"

	"github.com/yourorg/pkgaudit/internal/scanner"
)

// renderMarkdown produces an executive-summary table followed by one
// section per scanner. Grounded on the teacher's renderMarkdown
// (internal/reporter/reporter.go), dropping its localization/emoji layer
// (not part of this spec's ambient stack) but keeping its
// summary-table-then-per-finding-section shape.
func renderMarkdown(w io.Writer, r Report) error {
	fmt.Fprintf(w, "# Pre-install audit: %s@%s\n\n", r.Package.Name, r.Package.Version)

	fmt.Fprintf(w, "## Executive summary\n\n")
	fmt.Fprintf(w, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(w, "| Score | %d/100 |\n", r.Score)
	fmt.Fprintf(w, "| Grade | %s |\n", r.Grade)
	fmt.Fprintf(w, "| Verdict | %s |\n", r.Verdict)
	fmt.Fprintf(w, "| License | %s |\n", valueOr(r.Package.License, "unknown"))
	fmt.Fprintf(w, "| Repository | %s |\n", valueOr(r.Package.RepositoryURL, "none declared"))
	fmt.Fprintf(w, "| Duration | %dms |\n\n", r.Duration)

	if r.GitHub != nil {
		fmt.Fprintf(w, "## Repository health\n\n")
		if r.GitHub.Found {
			fmt.Fprintf(w, "- **%s/%s** — %d stars, %d forks, %d open issues\n", r.GitHub.Owner, r.GitHub.Name, r.GitHub.Stars, r.GitHub.Forks, r.GitHub.OpenIssues)
			fmt.Fprintf(w, "- archived: %v, publisher matches owner: %v\n", r.GitHub.Archived, r.GitHub.PublisherMatchesOwner)
			for _, issue := range r.GitHub.FlaggedIssues {
				fmt.Fprintf(w, "  - flagged issue: %s\n", issue)
			}
		} else {
			fmt.Fprintf(w, "- repository could not be resolved or queried\n")
		}
		fmt.Fprintln(w)
	}

	if r.Diff != nil {
		fmt.Fprintf(w, "## Source diff\n\n")
		if r.Diff.Performed {
			fmt.Fprintf(w, "- %d unexpected file(s), %d expected build file(s), %d modified file(s)\n\n", len(r.Diff.UnexpectedFiles), len(r.Diff.ExpectedBuildFiles), len(r.Diff.ModifiedFiles))
		} else {
			fmt.Fprintf(w, "- not performed: %s\n\n", r.Diff.Error)
		}
	}

	fmt.Fprintf(w, "## Scanners\n\n")
	for _, result := range r.Scanners {
		fmt.Fprintf(w, "### %s\n\n", result.Scanner)
		fmt.Fprintf(w, "%s\n\n", result.Summary)
		for _, f := range result.Findings {
			fmt.Fprintf(w, "- **[%s]** %s", severityLabel(f.Severity), f.Message)
			if f.File != "" {
				fmt.Fprintf(w, " (`%s`", f.File)
				if f.Line > 0 {
					fmt.Fprintf(w, ":%d", f.Line)
				}
				fmt.Fprintf(w, ")")
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if r.PolicyPassed != nil {
		fmt.Fprintf(w, "## Policy gate\n\n")
		if *r.PolicyPassed {
			fmt.Fprintf(w, "passed\n")
		} else {
			fmt.Fprintf(w, "failed:\n")
			for _, gate := range r.PolicyTripped {
				fmt.Fprintf(w, "- %s\n", gate)
			}
		}
	}

	return nil
}

func severityLabel(s scanner.Severity) string {
	switch s {
	case scanner.SeverityCritical:
		return "CRITICAL"
	case scanner.SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
