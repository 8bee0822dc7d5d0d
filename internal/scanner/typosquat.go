package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TyposquatScanner compares the package name against a bundled list of
// popular names by Levenshtein distance (§4.8). It never reads the
// artifact directory — the specifier's name is the only input.
//
// Grounded on internal/analyzer/typosquat.go of the teacher: same
// scope-stripping normalization and Levenshtein matrix, re-targeted to the
// three-level severity model (distance 1 → critical, distance 2 →
// warning, matching the teacher's distance-1-High/distance-2-Medium
// mapping collapsed per SPEC_FULL.md's resolved severity-model question).
type TyposquatScanner struct {
	Popular []string
}

func NewTyposquatScanner(popular []string) *TyposquatScanner {
	return &TyposquatScanner{Popular: popular}
}

func (s *TyposquatScanner) Name() string { return "typosquatting" }

type typosquatMatch struct {
	name     string
	distance int
}

func (s *TyposquatScanner) Scan(_ context.Context, artifact Artifact) Result {
	if len(s.Popular) == 0 {
		return NewResult(s.Name(), nil, "Popular packages list unavailable — skipped")
	}

	name := normalizePackageName(artifact.Metadata.Name)

	var matches []typosquatMatch
	for _, popular := range s.Popular {
		popNorm := normalizePackageName(popular)
		if name == popNorm {
			return NewResult(s.Name(), nil, "is a known popular package")
		}
		if d := levenshteinDistance(name, popNorm); d > 0 && d <= 2 {
			matches = append(matches, typosquatMatch{name: popular, distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	var findings []Finding
	for _, m := range matches {
		sev := SeverityWarning
		if m.distance == 1 {
			sev = SeverityCritical
		}
		findings = append(findings, Finding{
			Scanner:  s.Name(),
			Severity: sev,
			Message:  fmt.Sprintf("name is edit-distance %d from popular package %q", m.distance, m.name),
		})
	}

	summary := "No similarly-named popular package found"
	if len(findings) > 0 {
		summary = fmt.Sprintf("%d near-match(es) against the popular-name list", len(findings))
	}
	return NewResult(s.Name(), findings, summary)
}

func normalizePackageName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ToLower(name)
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
