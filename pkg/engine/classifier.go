// Package engine 提供排班合规审查引擎
package engine

import (
	"github.com/google/uuid"
	"github.com/hegui/hegui/pkg/model"
)

// classify 按固定顺序合并各分析器的问题列表
// 顺序：各日期升序的日级问题，然后是全窗口的加班问题；
// 各分析器拥有独立的问题类型，跨分析器不需要去重
func classify(dateIssues [][]model.ComplianceIssue, overtime []model.ComplianceIssue) []model.ComplianceIssue {
	merged := make([]model.ComplianceIssue, 0, len(overtime))
	for _, issues := range dateIssues {
		merged = append(merged, issues...)
	}
	merged = append(merged, overtime...)
	return merged
}

// AppendAdvisory 追加外部辅助分析的补充发现
// 辅助发现带有来源标记，只作低置信度参考，永不替代确定性检查
func AppendAdvisory(result *model.AnalysisResult, findings []model.ComplianceIssue) {
	if result == nil || len(findings) == 0 {
		return
	}
	for i := range findings {
		findings[i].Source = model.SourceAdvisory
		if findings[i].Severity == "" {
			findings[i].Severity = model.SeverityInfo
		}
		if findings[i].ID == uuid.Nil {
			findings[i].ID = uuid.New()
		}
	}
	result.ComplianceIssues = append(result.ComplianceIssues, findings...)
	result.Summarize()
}
