package scanner

import (
	"context"
	"testing"

	"github.com/yourorg/pkgaudit/internal/provider"
)

func TestTyposquatScanner_ExactPopularMatch(t *testing.T) {
	s := NewTyposquatScanner([]string{"lodash", "react", "express"})
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{Name: "lodash"}})
	if len(result.Findings) != 0 {
		t.Error("expected no findings for an exact match against the popular-name list")
	}
}

func TestTyposquatScanner_EditDistanceOneIsCritical(t *testing.T) {
	s := NewTyposquatScanner([]string{"lodash"})
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{Name: "lodashh"}})
	if len(result.Findings) != 1 || result.Findings[0].Severity != SeverityCritical {
		t.Errorf("expected a single critical finding for a distance-1 typosquat, got %+v", result.Findings)
	}
}

func TestTyposquatScanner_EditDistanceTwoIsWarning(t *testing.T) {
	s := NewTyposquatScanner([]string{"lodash"})
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{Name: "lodashhh"}})
	if len(result.Findings) != 1 || result.Findings[0].Severity != SeverityWarning {
		t.Errorf("expected a single warning finding for a distance-2 typosquat, got %+v", result.Findings)
	}
}

func TestTyposquatScanner_UnrelatedNameNoFindings(t *testing.T) {
	s := NewTyposquatScanner([]string{"lodash", "react"})
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{Name: "my-completely-unrelated-package"}})
	if len(result.Findings) != 0 {
		t.Error("expected no findings for an unrelated package name")
	}
}

func TestTyposquatScanner_EmptyPopularList(t *testing.T) {
	s := NewTyposquatScanner(nil)
	result := s.Scan(context.Background(), Artifact{Metadata: &provider.Metadata{Name: "anything"}})
	if len(result.Findings) != 0 {
		t.Error("expected no findings when the popular-name list is unavailable")
	}
}
