// Package engine 提供排班合规审查引擎
package engine

import (
	"fmt"

	"github.com/hegui/hegui/pkg/model"
)

// timedShift 带解析后起止时间的班次（自午夜起的分钟数）
type timedShift struct {
	rec   *model.ShiftRecord
	start int
	end   int
}

// splitByClock 解析某日期各班次的起止时间
// 时间无法解析的班次只从覆盖与冲突检查中排除，并产生数据质量问题；
// 数据问题隔离在单条班次，不影响其它班次和其它日期的审查
func splitByClock(date string, shifts []*model.ShiftRecord) ([]timedShift, []model.ComplianceIssue) {
	timed := make([]timedShift, 0, len(shifts))
	var issues []model.ComplianceIssue

	for _, s := range shifts {
		start, err1 := s.StartMinutes()
		end, err2 := s.EndMinutes()
		if err1 != nil || err2 != nil {
			issues = append(issues, model.NewIssue(
				model.IssueDataQuality,
				model.SeverityWarning,
				fmt.Sprintf("%s 在 %s 的班次时间无法解析（%s-%s），已从覆盖与冲突检查中排除",
					s.EmployeeName, date, s.StartTime, s.EndTime),
				"修正该班次的起止时间格式（HH:MM）",
				"重新上传修正后的排班表",
			).WithDate(date).WithEmployee(s.EmployeeName).WithRefs(s.Ref()))
			continue
		}
		timed = append(timed, timedShift{rec: s, start: start, end: end})
	}

	return timed, issues
}

// CoverageSlot 单个小时的覆盖情况
type CoverageSlot struct {
	HasRN      bool `json:"has_rn"`
	HasLPN     bool `json:"has_lpn"`
	HasCNA     bool `json:"has_cna"`
	TotalStaff int  `json:"total_staff"`
}

// DailyCoverage 某日期的24小时覆盖模型
// 每次运行时构建，问题提取完成后即丢弃
type DailyCoverage struct {
	Date  string           `json:"date"`
	Slots [24]CoverageSlot `json:"slots"`
}

// CoverageAnalyzer 时段覆盖分析器
type CoverageAnalyzer struct {
	cfg RuleConfig
}

// NewCoverageAnalyzer 创建覆盖分析器
func NewCoverageAnalyzer(cfg RuleConfig) *CoverageAnalyzer {
	return &CoverageAnalyzer{cfg: cfg.normalized()}
}

// BuildModels 构建各日期的覆盖模型
// 跨午夜班次拆分为两段：当日 [startHour, 24) 与次日 [0, endHour)；
// 次日不在排班窗口内时，溢出时段不参与任何日期的模型
func (a *CoverageAnalyzer) BuildModels(timedByDate map[string][]timedShift) map[string]*DailyCoverage {
	models := make(map[string]*DailyCoverage, len(timedByDate))
	for date := range timedByDate {
		models[date] = &DailyCoverage{Date: date}
	}

	for date, shifts := range timedByDate {
		for _, ts := range shifts {
			startHour := ts.start / 60
			endHour := ts.end / 60
			if endHour > startHour {
				markHours(models[date], ts.rec.Role, startHour, endHour)
				continue
			}
			markHours(models[date], ts.rec.Role, startHour, 24)
			if next := models[model.NextDate(date)]; next != nil {
				markHours(next, ts.rec.Role, 0, endHour)
			}
		}
	}

	return models
}

// markHours 在覆盖模型上标记 [from, to) 小时区间
func markHours(cov *DailyCoverage, role model.Role, from, to int) {
	if from < 0 {
		from = 0
	}
	if to > 24 {
		to = 24
	}
	for h := from; h < to; h++ {
		slot := &cov.Slots[h]
		slot.TotalStaff++
		switch role {
		case model.RoleRN:
			slot.HasRN = true
		case model.RoleLPN:
			slot.HasLPN = true
		case model.RoleCNA:
			slot.HasCNA = true
		}
	}
}

// ExtractIssues 从覆盖模型提取合规问题
// 注册护士缺岗为严重问题（24小时持证护士在岗是监管底线），
// 在岗人数不足为警告；问题按小时逐条生成，不跨小时合并，
// 下游可通过计数得到缺口小时数
func (a *CoverageAnalyzer) ExtractIssues(cov *DailyCoverage) []model.ComplianceIssue {
	var issues []model.ComplianceIssue

	for hour := 0; hour < 24; hour++ {
		slot := cov.Slots[hour]

		if !slot.HasRN {
			issues = append(issues, model.NewIssue(
				model.IssueCoverageGap,
				model.SeverityCritical,
				fmt.Sprintf("%s %02d:00-%02d:00 时段无注册护士在岗", cov.Date, hour, hour+1),
				"为该时段安排注册护士值班",
				"延长相邻注册护士班次覆盖该时段",
			).WithDate(cov.Date))
		}

		if slot.TotalStaff < a.cfg.MinStaffPerHour {
			issues = append(issues, model.NewIssue(
				model.IssueCoverageGap,
				model.SeverityWarning,
				fmt.Sprintf("%s %02d:00-%02d:00 时段在岗人员仅 %d 人，低于最低要求 %d 人",
					cov.Date, hour, hour+1, slot.TotalStaff, a.cfg.MinStaffPerHour),
				"评估该时段的人力配置",
				"安排额外人员补充该时段",
			).WithDate(cov.Date))
		}
	}

	return issues
}
