// Package pipeline implements the orchestrator's state machine (§9): fetch
// metadata and extract the artifact, spawn the scanner set in parallel
// alongside the optional repository-health and diff collaborators, join,
// score, and assemble the report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/pkgaudit/internal/diffengine"
	"github.com/yourorg/pkgaudit/internal/policygate"
	"github.com/yourorg/pkgaudit/internal/provider"
	"github.com/yourorg/pkgaudit/internal/repohealth"
	"github.com/yourorg/pkgaudit/internal/report"
	"github.com/yourorg/pkgaudit/internal/scanner"
	"github.com/yourorg/pkgaudit/internal/scorer"
)

// Options configures one run. Zero Timeout/Concurrency select sensible
// defaults.
type Options struct {
	RegistryURL   string
	Timeout       time.Duration
	SkipGitHub    bool
	SkipDiff      bool
	FetchIssues   bool
	Policy        *policygate.Policy
}

// Run executes the full pipeline for a single package specifier and
// returns the assembled Report. A metadata-fetch failure is the only
// fatal error (§7): every other collaborator degrades gracefully.
func Run(ctx context.Context, rawSpecifier string, opts Options) (report.Report, error) {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	spec := provider.ParseSpecifier(rawSpecifier)

	var resolved *provider.Resolved
	var err error
	if spec.Local {
		resolved, err = provider.FetchLocal(spec)
	} else {
		npm := provider.NewNPMProvider(opts.RegistryURL, timeout)
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		resolved, err = npm.Fetch(fetchCtx, spec)
		cancel()
	}
	if err != nil {
		return report.Report{}, fmt.Errorf("fetching artifact: %w", err)
	}
	defer resolved.Tree.Cleanup()

	artifact := scanner.Artifact{Metadata: resolved.Metadata, Dir: resolved.Tree.Dir}

	scanners := []scanner.Scanner{
		scanner.NewStaticScanner(),
		scanner.NewObfuscationScanner(),
		scanner.NewHooksScanner(),
		scanner.NewSecretScanner(),
		scanner.NewBinaryScanner(),
		scanner.NewDependencyScanner(),
		scanner.NewTyposquatScanner(scanner.PopularPackageNames),
		scanner.NewIOCExtractor(scanner.IgnoredDomains, scanner.IgnoredIPs),
	}

	results := scanner.RunAll(ctx, scanners, artifact)

	var health *repohealth.Health
	if !opts.SkipGitHub && resolved.Metadata.RepositoryURL != "" {
		healthCtx, healthCancel := context.WithTimeout(ctx, timeout)
		probe := repohealth.NewProbe(timeout)
		h := probe.Check(healthCtx, resolved.Metadata.RepositoryURL, resolved.Metadata.Publisher, opts.FetchIssues)
		healthCancel()
		health = &h
	}

	var diffResult *diffengine.Result
	if !opts.SkipDiff && resolved.Metadata.RepositoryURL != "" {
		engine := diffengine.NewEngine(func(ctx context.Context, repoURL string) (string, error) {
			owner, repo, host := repohealth.ParseRepoURL(repoURL)
			if owner == "" || repo == "" || host != "github.com" {
				return "", fmt.Errorf("unparseable or non-GitHub repository URL: %s", repoURL)
			}
			return fmt.Sprintf("https://codeload.github.com/%s/%s/tar.gz/HEAD", owner, repo), nil
		})
		diffCtx, diffCancel := context.WithTimeout(ctx, timeout)
		d := engine.Diff(diffCtx, resolved.Metadata.RepositoryURL, resolved.Tree.Dir)
		diffCancel()
		diffResult = &d
	}

	hasProvenance := resolved.Metadata.HasTrustedPublisherAttestation
	outcome := scorer.Score(results, health, diffResult, hasProvenance, resolved.Metadata.WeeklyDownloads, start)

	duration := time.Since(start)
	r := report.New(resolved.Metadata, results, health, diffResult, outcome.Score, outcome.Grade, outcome.Verdict, duration)

	if opts.Policy != nil {
		isTyposquat := false
		for _, res := range results {
			if res.Scanner == "typosquatting" {
				for _, f := range res.Findings {
					if f.Severity == scanner.SeverityCritical {
						isTyposquat = true
					}
				}
			}
		}
		gateResult := policygate.Evaluate(policygate.Input{
			Score:            outcome.Score,
			ScannerResults:   results,
			RepositoryHealth: health,
			IsTyposquat:      isTyposquat,
		}, *opts.Policy, start)

		passed := gateResult.Passed
		r.PolicyPassed = &passed
		r.PolicyTripped = gateResult.TrippedGates
	}

	return r, nil
}
