// Package model 定义合规审查引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// IssueType 合规问题类型
type IssueType string

const (
	IssueStaffingRatio      IssueType = "staffing_ratio"      // 护理工时配比不足
	IssueOvertimeViolation  IssueType = "overtime_violation"  // 周加班超限
	IssueCoverageGap        IssueType = "coverage_gap"        // 时段覆盖缺口
	IssueDoubleBooking      IssueType = "double_booking"      // 班次时间冲突
	IssueLicenseRequirement IssueType = "license_requirement" // 执业资质要求
	IssueDataQuality        IssueType = "data_quality"        // 数据质量问题
)

// Severity 问题严重程度
type Severity string

const (
	SeverityCritical Severity = "critical" // 严重（监管红线）
	SeverityWarning  Severity = "warning"  // 警告（需要关注）
	SeverityInfo     Severity = "info"     // 提示（参考信息）
)

// Source 问题来源
type Source string

const (
	SourceEngine   Source = "engine"   // 确定性规则检查
	SourceAdvisory Source = "advisory" // 外部辅助分析（低置信度补充）
)

// ComplianceIssue 合规问题（输出，生成后不可变）
type ComplianceIssue struct {
	ID          uuid.UUID `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"` // 必须包含所涉日期和/或员工
	Suggestions []string  `json:"suggestions,omitempty"`
	ShiftRefs   []string  `json:"shift_refs,omitempty"` // 追溯到相关班次
	Source      Source    `json:"source"`
	Date        string    `json:"date,omitempty"`
	Employee    string    `json:"employee,omitempty"`
}

// NewIssue 创建引擎生成的合规问题
func NewIssue(issueType IssueType, severity Severity, message string, suggestions ...string) ComplianceIssue {
	return ComplianceIssue{
		ID:          uuid.New(),
		Type:        issueType,
		Severity:    severity,
		Message:     message,
		Suggestions: suggestions,
		Source:      SourceEngine,
	}
}

// WithDate 设置所涉日期
func (i ComplianceIssue) WithDate(date string) ComplianceIssue {
	i.Date = date
	return i
}

// WithEmployee 设置所涉员工
func (i ComplianceIssue) WithEmployee(name string) ComplianceIssue {
	i.Employee = name
	return i
}

// WithRefs 设置班次追溯标识
func (i ComplianceIssue) WithRefs(refs ...string) ComplianceIssue {
	i.ShiftRefs = refs
	return i
}

// AnalysisResult 一次审查运行的结果
type AnalysisResult struct {
	TotalShifts      int               `json:"total_shifts"`
	ComplianceIssues []ComplianceIssue `json:"compliance_issues"`
	CriticalIssues   int               `json:"critical_issues"`
	Warnings         int               `json:"warnings"`
}

// Summarize 根据问题列表重算严重程度统计
func (r *AnalysisResult) Summarize() {
	r.CriticalIssues = 0
	r.Warnings = 0
	for _, issue := range r.ComplianceIssues {
		switch issue.Severity {
		case SeverityCritical:
			r.CriticalIssues++
		case SeverityWarning:
			r.Warnings++
		}
	}
}
