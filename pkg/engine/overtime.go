// Package engine 提供排班合规审查引擎
package engine

import (
	"fmt"
	"sort"

	"github.com/hegui/hegui/pkg/model"
)

// OvertimeAnalyzer 周加班分析器
type OvertimeAnalyzer struct {
	cfg RuleConfig
}

// NewOvertimeAnalyzer 创建加班分析器
func NewOvertimeAnalyzer(cfg RuleConfig) *OvertimeAnalyzer {
	return &OvertimeAnalyzer{cfg: cfg.normalized()}
}

// Analyze 汇总整个排班窗口内各员工的累计工时
// 排班窗口视作一个报告周期（通常为一周）；恰好达到上限不算加班
func (a *OvertimeAnalyzer) Analyze(shifts []*model.ShiftRecord) []model.ComplianceIssue {
	totals := make(map[string]float64)
	names := make(map[string]string)
	for _, s := range shifts {
		if s == nil {
			continue
		}
		key := s.NormalizedName()
		if key == "" {
			continue
		}
		totals[key] += s.Hours
		if _, seen := names[key]; !seen {
			names[key] = s.EmployeeName
		}
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []model.ComplianceIssue
	for _, key := range keys {
		total := totals[key]
		if total <= a.cfg.WeeklyHoursLimit {
			continue
		}
		overtime := total - a.cfg.WeeklyHoursLimit

		severity := model.SeverityWarning
		if overtime > a.cfg.CriticalOvertimeDelta {
			severity = model.SeverityCritical
		}

		issues = append(issues, model.NewIssue(
			model.IssueOvertimeViolation,
			severity,
			fmt.Sprintf("%s 本周期累计工时 %.2f 小时，超出 %.0f 小时上限 %.2f 小时",
				names[key], total, a.cfg.WeeklyHoursLimit, overtime),
			"核实加班是否经过审批",
			"将部分班次重新分配给其他员工",
		).WithEmployee(names[key]))
	}

	return issues
}
