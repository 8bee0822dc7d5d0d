// Package policygate implements the optional, configuration-driven pass/
// fail evaluation of §4.13: a read-only layer over an already-assembled
// Report that never mutates score, grade, or verdict.
//
// Grounded on internal/policy/policy.go's Evaluate function in the teacher,
// generalized from that file's ProjectReport/license/script-permission
// shape onto this spec's single-artifact Report and its narrower
// score/severity/typosquat/repo-health gate set.
package policygate

import (
	"fmt"
	"time"

	"github.com/yourorg/pkgaudit/internal/repohealth"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

// Policy is loaded from the config file's policy: block or a standalone
// --policy-file (§4.13).
type Policy struct {
	MinScore           int    `yaml:"min_score"`
	FailOnSeverity     string `yaml:"fail_on_severity"` // critical | warning | info | none
	BlockTyposquat     bool   `yaml:"block_typosquat"`
	BlockUnhealthyRepo bool   `yaml:"block_unhealthy_repo"`
}

// Default returns a disabled policy: min_score 0, fail_on_severity none,
// both boolean gates off.
func Default() Policy {
	return Policy{MinScore: 0, FailOnSeverity: "none"}
}

// Result is the outcome of a single evaluation.
type Result struct {
	Passed        bool
	TrippedGates  []string
}

// Input bundles exactly what Evaluate needs to read from an assembled
// Report, so this package has no dependency on the report package (and
// vice versa) — avoiding an import cycle since the report includes this
// gate's own result in its rendering.
type Input struct {
	Score            int
	ScannerResults   []scanner.Result
	RepositoryHealth *repohealth.Health
	IsTyposquat      bool
}

// Evaluate reads an assembled report's fields once and produces a pass/
// fail verdict plus the specific gate(s) that tripped. It never mutates
// score, grade, or verdict. now anchors the "young repository" gate; pass
// the pipeline's run timestamp rather than reading the wall clock here.
func Evaluate(in Input, p Policy, now time.Time) Result {
	var tripped []string

	if p.MinScore > 0 && in.Score < p.MinScore {
		tripped = append(tripped, fmt.Sprintf("score %d below minimum %d", in.Score, p.MinScore))
	}

	if sev, ok := severityThreshold(p.FailOnSeverity); ok {
		for _, r := range in.ScannerResults {
			for _, f := range r.Findings {
				if f.Severity >= sev {
					tripped = append(tripped, fmt.Sprintf("%s finding at or above %s severity (%s: %s)", r.Scanner, p.FailOnSeverity, r.Scanner, f.Message))
				}
			}
		}
	}

	if p.BlockTyposquat && in.IsTyposquat {
		tripped = append(tripped, "package name flagged as a likely typosquat")
	}

	if p.BlockUnhealthyRepo && in.RepositoryHealth != nil && in.RepositoryHealth.Found {
		h := in.RepositoryHealth
		if h.Archived {
			tripped = append(tripped, "repository is archived")
		}
		young := !h.CreatedAt.IsZero() && now.Sub(h.CreatedAt) < 30*24*time.Hour
		if h.Stars == 0 && young {
			tripped = append(tripped, "repository has zero stars and was created within the last month")
		}
	}

	return Result{Passed: len(tripped) == 0, TrippedGates: tripped}
}

func severityThreshold(name string) (scanner.Severity, bool) {
	switch name {
	case "critical":
		return scanner.SeverityCritical, true
	case "warning":
		return scanner.SeverityWarning, true
	case "info":
		return scanner.SeverityInfo, true
	default:
		return 0, false
	}
}
