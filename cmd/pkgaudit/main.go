package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/pkgaudit/internal/config"
	"github.com/yourorg/pkgaudit/internal/pipeline"
	"github.com/yourorg/pkgaudit/internal/policygate"
	"github.com/yourorg/pkgaudit/internal/report"
	"github.com/yourorg/pkgaudit/internal/scanner"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	registryURL string
	format      string
	severity    string
	failOn      string
	timeoutSec  int
	concurrency int
	noGitHub    bool
	noDiff      bool
	fetchIssues bool
	outputFile  string
	quiet       bool
	policyFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pkgaudit [package-specifier]",
		Short:   "Pre-install security audit of a package artifact before it reaches your project",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE:    runAudit,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list-analyzers",
		Short: "List the scanners this build runs and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"static", "obfuscation", "hooks", "secrets", "binaries", "dependencies", "typosquatting", "ioc"} {
				fmt.Println(name)
			}
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "policy-check [package-specifier]",
		Short: "Audit a package and report only the Policy Gate outcome",
		Args:  cobra.ExactArgs(1),
		RunE:  runPolicyCheck,
	})

	rootCmd.PersistentFlags().StringVarP(&registryURL, "registry", "r", "", "package registry URL (default: https://registry.npmjs.org)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "terminal", "output format (terminal, json, markdown, pdf, sarif)")
	rootCmd.PersistentFlags().StringVarP(&severity, "severity", "s", "info", "minimum severity to include in rendered output (info, warning, critical)")
	rootCmd.PersistentFlags().StringVar(&failOn, "fail-on", "", "force exit code 2 if any finding meets/exceeds this severity (info, warning, critical)")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 60, "timeout in seconds for each external collaborator call")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", 8, "max concurrent scanner goroutines (informational; scanners always run in parallel)")
	rootCmd.PersistentFlags().BoolVar(&noGitHub, "no-github", false, "skip the Repository-Health Probe")
	rootCmd.PersistentFlags().BoolVar(&noDiff, "no-diff", false, "skip the Source-Diff Engine")
	rootCmd.PersistentFlags().BoolVar(&fetchIssues, "issues", false, "fetch and flag recent repository issues matching security keywords")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress messages on stderr")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy-file", "", "path to a standalone policy file (overrides the config file's policy: block)")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// ExitError carries a non-default exit code through cobra's error path,
// per §6's exit-code contract.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func stderrPrintf(f string, a ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stderr, f, a...)
	}
}

func loadResolved(cmd *cobra.Command) (*config.Resolved, error) {
	r := &config.Resolved{
		Registry:    registryURL,
		Format:      format,
		Severity:    severity,
		FailOn:      failOn,
		Timeout:     timeoutSec,
		Concurrency: concurrency,
		NoGitHub:    noGitHub,
		NoDiff:      noDiff,
		Quiet:       quiet,
		Policy:      policygate.Default(),
	}

	var file *config.File
	if cfgPath := config.Find(); cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		file = f
	}

	config.Resolve(cmd, r, file)

	if policyFile != "" {
		pf, err := config.Load(policyFile)
		if err != nil {
			return nil, err
		}
		r.Policy = pf.Policy
	}

	return r, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	resolved, err := loadResolved(cmd)
	if err != nil {
		return err
	}

	minSev, err := parseSeverity(resolved.Severity)
	if err != nil {
		return err
	}

	var policy *policygate.Policy
	if resolved.Policy.MinScore > 0 || resolved.Policy.FailOnSeverity != "" && resolved.Policy.FailOnSeverity != "none" || resolved.Policy.BlockTyposquat || resolved.Policy.BlockUnhealthyRepo {
		policy = &resolved.Policy
	}

	stderrPrintf("auditing %s...\n", args[0])

	rep, err := pipeline.Run(context.Background(), args[0], pipeline.Options{
		RegistryURL: resolved.Registry,
		Timeout:     time.Duration(resolved.Timeout) * time.Second,
		SkipGitHub:  resolved.NoGitHub,
		SkipDiff:    resolved.NoDiff,
		FetchIssues: fetchIssues,
		Policy:      policy,
	})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	rep.Scanners = filterScanners(rep.Scanners, minSev)

	out, cleanup, err := resolveOutput()
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := report.Render(out, resolved.Format, rep); err != nil {
		return err
	}

	return exitFromReport(rep, resolved.FailOn)
}

func runPolicyCheck(cmd *cobra.Command, args []string) error {
	resolved, err := loadResolved(cmd)
	if err != nil {
		return err
	}

	policy := resolved.Policy

	rep, err := pipeline.Run(context.Background(), args[0], pipeline.Options{
		RegistryURL: resolved.Registry,
		Timeout:     time.Duration(resolved.Timeout) * time.Second,
		SkipGitHub:  resolved.NoGitHub,
		SkipDiff:    resolved.NoDiff,
		FetchIssues: fetchIssues,
		Policy:      &policy,
	})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if rep.PolicyPassed == nil || *rep.PolicyPassed {
		fmt.Println("policy gate: passed")
		return nil
	}

	fmt.Println("policy gate: failed")
	for _, gate := range rep.PolicyTripped {
		fmt.Printf("  - %s\n", gate)
	}
	return &ExitError{Code: 2, Message: "policy gate failed"}
}

func filterScanners(results []scanner.Result, min scanner.Severity) []scanner.Result {
	return scanner.FilterByMinSeverity(results, min)
}

func resolveOutput() (io.Writer, func(), error) {
	if outputFile == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func parseSeverity(s string) (scanner.Severity, error) {
	switch s {
	case "info":
		return scanner.SeverityInfo, nil
	case "warning":
		return scanner.SeverityWarning, nil
	case "critical":
		return scanner.SeverityCritical, nil
	default:
		return 0, fmt.Errorf("invalid severity %q: must be info, warning, or critical", s)
	}
}

// exitFromReport implements §6's exit-code contract: grade A/B (and a
// passing Policy Gate, if configured) exits 0; grade C exits 1; grade D/F
// or a failing gate exits 2 regardless of grade.
func exitFromReport(rep report.Report, failOn string) error {
	if rep.PolicyPassed != nil && !*rep.PolicyPassed {
		return &ExitError{Code: 2, Message: "policy gate failed"}
	}

	if failOn != "" {
		sev, err := parseSeverity(failOn)
		if err != nil {
			return err
		}
		for _, result := range rep.Scanners {
			for _, f := range result.Findings {
				if f.Severity >= sev {
					return &ExitError{Code: 2, Message: fmt.Sprintf("findings at or above %q severity detected", failOn)}
				}
			}
		}
	}

	switch rep.Grade {
	case "A", "B":
		return nil
	case "C":
		return &ExitError{Code: 1, Message: "grade C: caution advised"}
	default:
		return &ExitError{Code: 2, Message: "grade D/F: audit flags this package as dangerous"}
	}
}
