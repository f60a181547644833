package model

import (
	"testing"
)

func TestNewIssue(t *testing.T) {
	issue := NewIssue(IssueCoverageGap, SeverityCritical, "2026-03-02 03:00时段无注册护士在岗",
		"为该时段安排注册护士", "延长相邻夜班覆盖")

	if issue.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("问题应分配ID")
	}
	if issue.Type != IssueCoverageGap {
		t.Errorf("Type = %s, expected %s", issue.Type, IssueCoverageGap)
	}
	if issue.Severity != SeverityCritical {
		t.Errorf("Severity = %s, expected %s", issue.Severity, SeverityCritical)
	}
	if issue.Source != SourceEngine {
		t.Errorf("Source = %s, expected %s", issue.Source, SourceEngine)
	}
	if len(issue.Suggestions) != 2 {
		t.Errorf("Suggestions数量 = %d, expected 2", len(issue.Suggestions))
	}
}

func TestComplianceIssue_With(t *testing.T) {
	issue := NewIssue(IssueDoubleBooking, SeverityCritical, "班次冲突").
		WithDate("2026-03-02").
		WithEmployee("王芳").
		WithRefs("王芳 2026-03-02 07:00-15:00", "王芳 2026-03-02 14:00-22:00")

	if issue.Date != "2026-03-02" {
		t.Errorf("Date = %q", issue.Date)
	}
	if issue.Employee != "王芳" {
		t.Errorf("Employee = %q", issue.Employee)
	}
	if len(issue.ShiftRefs) != 2 {
		t.Errorf("ShiftRefs数量 = %d, expected 2", len(issue.ShiftRefs))
	}
}

func TestAnalysisResult_Summarize(t *testing.T) {
	result := AnalysisResult{
		TotalShifts: 10,
		ComplianceIssues: []ComplianceIssue{
			{Severity: SeverityCritical},
			{Severity: SeverityCritical},
			{Severity: SeverityWarning},
			{Severity: SeverityInfo},
		},
	}

	result.Summarize()

	if result.CriticalIssues != 2 {
		t.Errorf("CriticalIssues = %d, expected 2", result.CriticalIssues)
	}
	if result.Warnings != 1 {
		t.Errorf("Warnings = %d, expected 1", result.Warnings)
	}
}
