package scanner

import (
	"context"
	"fmt"
	"regexp"
)

var gitVersionShape = regexp.MustCompile(`^(git://|git\+https?://|git\+ssh://|github:|gitlab:|bitbucket:)|\.git$|^[\w.-]+/[\w.-]+$`)

// DependencyScanner flags dependency-count bloat and unpinned/git-shaped
// versions in the manifest's direct and optional dependency maps (§4.7).
//
// Grounded on internal/analyzer/deps.go of the teacher: same "total > N"
// bloat thresholds and same unsafe-version detection, extended per this
// spec's explicit git-URL-version-shape rule which the teacher's file
// didn't check for (the teacher only flagged wildcard/open-range
// versions).
type DependencyScanner struct{}

func NewDependencyScanner() *DependencyScanner { return &DependencyScanner{} }

func (s *DependencyScanner) Name() string { return "dependencies" }

func (s *DependencyScanner) Scan(_ context.Context, artifact Artifact) Result {
	direct := artifact.Metadata.Dependencies
	optional := artifact.Metadata.OptionalDependencies
	total := len(direct) + len(optional)

	var findings []Finding

	switch {
	case total > 50:
		findings = append(findings, Finding{
			Scanner:  s.Name(),
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%d total dependencies exceeds the 50-dependency threshold", total),
		})
	case total > 20:
		findings = append(findings, Finding{
			Scanner:  s.Name(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d total dependencies exceeds the 20-dependency threshold", total),
		})
	}

	for name, version := range merge(direct, optional) {
		switch {
		case version == "*" || version == "" || version == "latest":
			findings = append(findings, Finding{
				Scanner:  s.Name(),
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("dependency %q is unpinned (version %q)", name, version),
			})
		case gitVersionShape.MatchString(version):
			findings = append(findings, Finding{
				Scanner:  s.Name(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("dependency %q resolves from a git URL rather than the registry (%q)", name, version),
			})
		}
	}

	summary := fmt.Sprintf("%d direct, %d optional dependencies", len(direct), len(optional))
	return NewResult(s.Name(), findings, summary)
}

func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
