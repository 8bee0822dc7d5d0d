package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yourorg/pkgaudit/internal/scanner"
)

// SARIF output, for feeding this audit's findings into code-scanning
// dashboards (GitHub's among them) that already understand the format.
// Grounded on the teacher's internal/reporter/sarif.go, narrowed to this
// repo's three-level Severity and per-scanner Finding shape instead of the
// teacher's five-level analyzer.Severity.
//
// Schema: https://docs.oasis-open.org/sarif/sarif/v2.1.0/os/schemas/sarif-schema-2.1.0.json

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	Properties       sarifRuleProperties `json:"properties,omitempty"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"` // error, warning, note
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

func renderSARIF(w io.Writer, r Report) error {
	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:           "pkgaudit",
				InformationURI: "https://github.com/yourorg/pkgaudit",
				Rules:          []sarifRule{},
			},
		},
		Results: []sarifResult{},
	}

	seenRules := make(map[string]bool)

	for _, result := range r.Scanners {
		for _, f := range result.Findings {
			ruleID := result.Scanner
			if !seenRules[ruleID] {
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
					ID:               ruleID,
					ShortDescription: sarifMessage{Text: fmt.Sprintf("%s scanner finding", ruleID)},
					Properties:       sarifRuleProperties{Tags: []string{"security", "supply-chain"}},
				})
				seenRules[ruleID] = true
			}

			loc := f.File
			if loc == "" {
				loc = "package.json"
			}

			run.Results = append(run.Results, sarifResult{
				RuleID: ruleID,
				Level:  sarifLevel(f.Severity),
				Message: sarifMessage{
					Text: fmt.Sprintf("[%s] %s", f.Severity, f.Message),
				},
				Locations: []sarifLocation{
					{
						PhysicalLocation: sarifPhysicalLocation{
							ArtifactLocation: sarifArtifactLocation{URI: loc},
							Region:           sarifRegion{StartLine: f.Line},
						},
					},
				},
			})
		}
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/os/schemas/sarif-schema-2.1.0.json",
		Runs:    []sarifRun{run},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(s scanner.Severity) string {
	switch s {
	case scanner.SeverityCritical:
		return "error"
	case scanner.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
