// Package scorer implements §4.12: the weighted, diminishing-returns
// arithmetic that turns a run's scanner results (plus optional repository
// health and diff evidence) into a single 0-100 score, letter grade, and
// verdict string.
package scorer

import (
	"math"
	"time"

	"github.com/yourorg/pkgaudit/internal/diffengine"
	"github.com/yourorg/pkgaudit/internal/repohealth"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

// categoryWeight is one row of the §4.12 weight table.
type categoryWeight struct {
	max      float64
	critical float64
	warning  float64
	info     float64
}

// weights is grounded on the exact table SPEC_FULL.md §4.12 specifies,
// re-tabulated from the teacher's internal/audit CalculateRiskScore
// category breakdown (which used a superset of these categories against
// the teacher's four-level severity model) collapsed onto this spec's
// three-level model and its own point values.
var weights = map[string]categoryWeight{
	"static":         {25, 15, 5, 0},
	"obfuscation":    {15, 10, 10, 3},
	"hooks":          {10, 10, 5, 0},
	"secrets":        {5, 5, 5, 0},
	"binaries":       {5, 3, 3, 1},
	"dependencies":   {10, 10, 5, 0},
	"typosquatting":  {5, 5, 5, 0},
}

// Outcome is the numeric result of a scoring pass; the pipeline attaches it
// to the assembled Report.
type Outcome struct {
	Score              int
	Grade              string
	Verdict            string
	CategoryScores     map[string]float64
	RepositoryHealthScore float64
	DiffScore          float64
}

// Score computes the total from a run's scanner results and optional
// health/diff evidence. hasProvenance reports whether the artifact carries
// a trusted-publisher attestation (§4.12's health-score provenance
// exception). now is the scorer clock the "created within the last month"
// health deduction is measured against; callers pass the pipeline's run
// timestamp rather than the scorer reading the wall clock itself.
func Score(results []scanner.Result, health *repohealth.Health, diff *diffengine.Result, hasProvenance bool, weeklyDownloads int, now time.Time) Outcome {
	categoryScores := map[string]float64{}
	total := 0.0

	for _, r := range results {
		w, ok := weights[r.Scanner]
		if !ok {
			continue // ioc and any future informational-only scanner never scores
		}

		crit, warn, info := 0, 0, 0
		for _, f := range r.Findings {
			switch f.Severity {
			case scanner.SeverityCritical:
				crit++
			case scanner.SeverityWarning:
				warn++
			default:
				info++
			}
		}

		deduction := diminishing(w.critical, crit) + diminishing(w.warning, warn) + diminishing(w.info, info)
		score := w.max - deduction
		if score < 0 {
			score = 0
		}
		if score > w.max {
			score = w.max
		}
		categoryScores[r.Scanner] = score
		total += score
	}

	healthScore := healthScore(health, hasProvenance, weeklyDownloads, now)
	diffScore := diffScore(diff)
	total += healthScore + diffScore

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	roundedScore := int(math.Round(total))
	grade := grade(roundedScore)

	return Outcome{
		Score:              roundedScore,
		Grade:              grade,
		Verdict:            verdict(grade),
		CategoryScores:     categoryScores,
		RepositoryHealthScore: healthScore,
		DiffScore:          diffScore,
	}
}

// diminishing implements the §4.12 diminishing-returns law: b*(1+ln n) for
// n findings at base deduction b, zero when n is zero.
func diminishing(base float64, n int) float64 {
	if n <= 0 || base <= 0 {
		return 0
	}
	return base * (1 + math.Log(float64(n)))
}

func healthScore(health *repohealth.Health, hasProvenance bool, weeklyDownloads int, now time.Time) float64 {
	const maxHealth = 15.0
	if health == nil || !health.Found {
		return 0
	}

	score := maxHealth
	if health.Archived {
		score -= 10
	}
	if health.Stars == 0 {
		score -= 5
	}
	youngRepo := !health.CreatedAt.IsZero() && now.Sub(health.CreatedAt) < 30*24*time.Hour
	if youngRepo {
		score -= 5
	}
	if !health.PublisherMatchesOwner {
		switch {
		case hasProvenance:
			// trusted automated publisher explains the mismatch
		case youngRepo && weeklyDownloads > 0 && weeklyDownloads < 1000:
			// a young repository with barely any adoption is the strongest
			// version of this mismatch signal (§1B download-reputation
			// tiering), grounded on the teacher's audit.go
			// CalculateRiskScoreWithReputation low-download amplifier.
			score -= maxHealth
		case health.Stars >= 100:
			score -= 3
		default:
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > maxHealth {
		score = maxHealth
	}
	return score
}

func diffScore(diff *diffengine.Result) float64 {
	const maxDiff = 10.0
	if diff == nil || !diff.Performed {
		return 0
	}

	u := len(diff.UnexpectedFiles)
	if u == 0 {
		return maxDiff
	}

	deduction := 3 * (1 + math.Log(float64(u)))
	if deduction > 8 {
		deduction = 8
	}
	score := maxDiff - deduction
	if score < 0 {
		score = 0
	}
	return score
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func verdict(grade string) string {
	switch grade {
	case "A", "B":
		return "CLEAN"
	case "C":
		return "CAUTION"
	default:
		return "DANGER"
	}
}
