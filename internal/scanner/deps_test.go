package scanner

import (
	"context"
	"fmt"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func TestDependencyScanner_FlagsWildcardVersion(t *testing.T) {
	s := NewDependencyScanner()
	meta := &provider.Metadata{Dependencies: map[string]string{"left-pad": "*"}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	found := false
	for _, f := range result.Findings {
		if f.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical finding for a wildcard-pinned dependency")
	}
}

func TestDependencyScanner_FlagsGitURLVersion(t *testing.T) {
	s := NewDependencyScanner()
	meta := &provider.Metadata{Dependencies: map[string]string{"forked-lib": "git+https://github.com/someone/forked-lib.git"}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	found := false
	for _, f := range result.Findings {
		if f.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning finding for a git-URL-pinned dependency")
	}
}

func TestDependencyScanner_FlagsDependencyBloat(t *testing.T) {
	s := NewDependencyScanner()
	deps := map[string]string{}
	for i := 0; i < 55; i++ {
		deps[fmt.Sprintf("pkg-%d", i)] = "1.0.0"
	}
	meta := &provider.Metadata{Dependencies: deps}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})

	found := false
	for _, f := range result.Findings {
		if f.Severity == SeverityCritical && f.File == "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical bloat finding for more than 50 total dependencies")
	}
}

func TestDependencyScanner_PinnedVersionsClean(t *testing.T) {
	s := NewDependencyScanner()
	meta := &provider.Metadata{Dependencies: map[string]string{"lodash": "^4.17.21", "axios": "1.6.0"}}
	result := s.Scan(context.Background(), Artifact{Metadata: meta})
	if len(result.Findings) != 0 {
		t.Errorf("expected no findings for normally-pinned dependencies, got %d", len(result.Findings))
	}
}
