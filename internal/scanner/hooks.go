package scanner

import (
	"context"
	"fmt"
	"strings"
)

// dangerousHooks is the fixed set of install/uninstall lifecycle hook
// names §4.4 treats as security-relevant.
var dangerousHooks = map[string]bool{
	"preinstall": true, "install": true, "postinstall": true,
	"preuninstall": true, "uninstall": true, "postuninstall": true,
}

// shellCommandMarkers is the fixed set of substrings that mark a lifecycle
// script as directly invoking a shell or interpreter, rather than a
// same-ecosystem build tool.
var shellCommandMarkers = []string{"curl", "wget", "bash", "sh -c", "node -e", "powershell", "cmd /c"}

// HooksScanner inspects the manifest's lifecycle-script map (§4.4).
// Grounded on internal/analyzer/scripts.go of the teacher: same
// dangerous-hook set and same shell-marker substring check, re-targeted to
// the three-level severity model (the teacher's "preinstall gets High,
// others get Medium" special case isn't in this spec's table, which scores
// every dangerous hook identically by shell-marker presence — see §4.4).
type HooksScanner struct{}

func NewHooksScanner() *HooksScanner { return &HooksScanner{} }

func (s *HooksScanner) Name() string { return "hooks" }

func (s *HooksScanner) Scan(_ context.Context, artifact Artifact) Result {
	scripts := artifact.Metadata.LifecycleScripts
	if len(scripts) == 0 {
		return NewResult(s.Name(), nil, "No lifecycle scripts declared")
	}

	var findings []Finding
	for hook, body := range scripts {
		if hook == "prepare" {
			findings = append(findings, Finding{
				Scanner:  s.Name(),
				Severity: SeverityInfo,
				Message:  "prepare script defined (conventional build hook)",
				Evidence: truncate(body, 200),
			})
			continue
		}
		if !dangerousHooks[hook] {
			continue
		}

		lower := strings.ToLower(body)
		executesShell := false
		for _, marker := range shellCommandMarkers {
			if strings.Contains(lower, marker) {
				executesShell = true
				break
			}
		}

		if executesShell {
			findings = append(findings, Finding{
				Scanner:  s.Name(),
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("%s script executes shell commands", hook),
				Evidence: truncate(body, 200),
			})
		} else {
			findings = append(findings, Finding{
				Scanner:  s.Name(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s lifecycle script defined", hook),
				Evidence: truncate(body, 200),
			})
		}
	}

	summary := fmt.Sprintf("%d lifecycle hook(s) inspected", len(scripts))
	return NewResult(s.Name(), findings, summary)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
