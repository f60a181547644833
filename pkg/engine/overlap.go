// Package engine 提供排班合规审查引擎
package engine

import (
	"fmt"
	"sort"

	"github.com/hegui/hegui/pkg/model"
)

// OverlapDetector 班次冲突检测器
type OverlapDetector struct{}

// NewOverlapDetector 创建冲突检测器
func NewOverlapDetector() *OverlapDetector {
	return &OverlapDetector{}
}

// AnalyzeDate 检测某日期内同一员工时间相交的班次
// 员工姓名做规范化（去空白、不区分大小写）后分组；
// 每个无序班次对至多报告一次，与输入顺序无关
func (d *OverlapDetector) AnalyzeDate(date string, shifts []timedShift) []model.ComplianceIssue {
	groups := make(map[string][]timedShift)
	for _, ts := range shifts {
		key := ts.rec.NormalizedName()
		groups[key] = append(groups[key], ts)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []model.ComplianceIssue
	for _, key := range keys {
		group := groups[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !spansOverlap(a, b) {
					continue
				}
				issues = append(issues, model.NewIssue(
					model.IssueDoubleBooking,
					model.SeverityCritical,
					fmt.Sprintf("%s 在 %s 存在时间冲突的班次: %s-%s 与 %s-%s",
						a.rec.EmployeeName, date,
						a.rec.StartTime, a.rec.EndTime,
						b.rec.StartTime, b.rec.EndTime),
					"调整其中一个班次的起止时间",
					"将其中一个班次改派给其他员工",
				).WithDate(date).WithEmployee(a.rec.EmployeeName).WithRefs(a.rec.Ref(), b.rec.Ref()))
			}
		}
	}

	return issues
}

// spansOverlap 检查两个班次的时间区间是否相交
// 比较只使用分钟数，跨午夜班次按顺延到次日处理
func spansOverlap(a, b timedShift) bool {
	aStart, aEnd := normalizedSpan(a)
	bStart, bEnd := normalizedSpan(b)
	return aStart < bEnd && bStart < aEnd
}

// normalizedSpan 返回顺延后的班次区间
func normalizedSpan(ts timedShift) (int, int) {
	if ts.end <= ts.start {
		return ts.start, ts.end + 24*60
	}
	return ts.start, ts.end
}
