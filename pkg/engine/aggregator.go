// Package engine 提供排班合规审查引擎
package engine

import (
	"sort"

	"github.com/hegui/hegui/pkg/model"
)

// GroupByDate 按日期分组班次，保持组内输入顺序
// 日期为空的记录被排除（日期校验由上游完成，此处不重复报错）
func GroupByDate(shifts []*model.ShiftRecord) map[string][]*model.ShiftRecord {
	byDate := make(map[string][]*model.ShiftRecord)
	for _, s := range shifts {
		if s == nil || s.Date == "" {
			continue
		}
		byDate[s.Date] = append(byDate[s.Date], s)
	}
	return byDate
}

// SortedDates 返回升序排列的日期列表
// YYYY-MM-DD 格式下字典序即时间序
func SortedDates(byDate map[string][]*model.ShiftRecord) []string {
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
