// Package scanner holds the fixed-severity Finding model shared by every
// static analyzer in the pipeline, and the fan-out/fan-in runner that
// executes them concurrently against one extracted artifact.
package scanner

import (
	"context"
	"sort"
	"sync"

	"github.com/yourorg/pkgaudit/internal/provider"
)

// Severity is the three-level finding severity this pipeline scores against.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Finding is a single observation produced by one scanner. Findings are
// value objects: once constructed they are never mutated.
type Finding struct {
	Scanner  string   `json:"scanner"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Evidence string   `json:"evidence,omitempty"`
}

// Result is the output of one scanner pass.
type Result struct {
	Scanner  string    `json:"scanner"`
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings"`
	Summary  string    `json:"summary"`
}

// NewResult builds a Result from a findings slice, deriving Passed per the
// invariant: passed iff there is no critical and no warning finding.
func NewResult(scannerName string, findings []Finding, summary string) Result {
	return Result{
		Scanner:  scannerName,
		Passed:   passes(findings),
		Findings: findings,
		Summary:  summary,
	}
}

func passes(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity >= SeverityWarning {
			return false
		}
	}
	return true
}

// Artifact is everything a scanner needs to examine one extracted package:
// the metadata fetched from the registry and the root directory it was
// unpacked to. Scanners never write to Dir.
type Artifact struct {
	Metadata *provider.Metadata
	Dir      string
}

// Scanner is implemented by every static analyzer in the pipeline.
type Scanner interface {
	// Name is the canonical scanner identity used in Finding.Scanner,
	// the report's scanner list, and the Scorer's per-category lookup.
	Name() string
	Scan(ctx context.Context, artifact Artifact) Result
}

// RunAll fans every scanner out onto its own goroutine against the same
// read-only artifact, then joins. A panicking or long-running scanner never
// blocks or corrupts another's result: each writes only to its own slot.
func RunAll(ctx context.Context, scanners []Scanner, artifact Artifact) []Result {
	results := make([]Result, len(scanners))
	var wg sync.WaitGroup

	for i, s := range scanners {
		wg.Add(1)
		go func(idx int, sc Scanner) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[idx] = NewResult(sc.Name(), nil, "scanner panicked, result discarded")
				}
			}()
			results[idx] = sc.Scan(ctx, artifact)
		}(i, s)
	}

	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Scanner < results[j].Scanner })
	return results
}

// FilterByMinSeverity keeps only findings at or above the given severity,
// across every scanner result, without mutating the inputs.
func FilterByMinSeverity(results []Result, min Severity) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		var kept []Finding
		for _, f := range r.Findings {
			if f.Severity >= min {
				kept = append(kept, f)
			}
		}
		out[i] = Result{Scanner: r.Scanner, Passed: r.Passed, Findings: kept, Summary: r.Summary}
	}
	return out
}
