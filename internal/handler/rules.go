package handler

import (
	"fmt"
	"net/http"

	"github.com/hegui/hegui/pkg/errors"
)

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float
	Description string `json:"description"`
	Value       string `json:"value"`
}

// RuleDefinition 合规规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Category    string      `json:"category"`
	Severity    string      `json:"severity"`
	Description string      `json:"description"`
	Params      []RuleParam `json:"params"`
}

// RuleLibraryResponse 规则库响应
type RuleLibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// Rules 返回当前生效的合规规则库
func (h *ComplianceHandler) Rules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	library := []RuleDefinition{
		{
			Name:        "min_total_ppd",
			DisplayName: "人均护理时数下限",
			Category:    "人员配比",
			Severity:    "critical",
			Description: "每日护理总时数除以住养人数不得低于下限，统计 RN、LPN、CNA 三类护理岗位。",
			Params: []RuleParam{
				{Name: "min_total_ppd", Type: "float", Description: "人均护理时数下限", Value: fmt.Sprintf("%.2f", h.rules.MinTotalPPD)},
				{Name: "capacity_factor", Type: "float", Description: "按床位数估算住养人数的入住率", Value: fmt.Sprintf("%.2f", h.rules.CapacityFactor)},
				{Name: "fallback_census", Type: "float", Description: "床位数未知时的默认住养人数", Value: fmt.Sprintf("%.0f", h.rules.FallbackCensus)},
			},
		},
		{
			Name:        "min_rn_ppd",
			DisplayName: "注册护士人均时数下限",
			Category:    "人员配比",
			Severity:    "critical",
			Description: "每日注册护士时数除以住养人数不得低于下限，与总时数检查相互独立。",
			Params: []RuleParam{
				{Name: "min_rn_ppd", Type: "float", Description: "注册护士人均时数下限", Value: fmt.Sprintf("%.2f", h.rules.MinRNPPD)},
			},
		},
		{
			Name:        "rn_coverage",
			DisplayName: "注册护士全天覆盖",
			Category:    "时段覆盖",
			Severity:    "critical",
			Description: "每天 24 个小时段都必须有注册护士在岗，跨夜班次按实际时段计入两天。",
			Params:      []RuleParam{},
		},
		{
			Name:        "min_staff_per_hour",
			DisplayName: "每小时最低在岗人数",
			Category:    "时段覆盖",
			Severity:    "warning",
			Description: "任一小时段的在岗护理人员总数不得低于下限。",
			Params: []RuleParam{
				{Name: "min_staff_per_hour", Type: "int", Description: "每小时最低在岗人数", Value: fmt.Sprintf("%d", h.rules.MinStaffPerHour)},
			},
		},
		{
			Name:        "weekly_overtime",
			DisplayName: "周加班检查",
			Category:    "工时合规",
			Severity:    "warning",
			Description: "员工每周累计工时超过上限记为加班，超出幅度过大升级为严重问题。",
			Params: []RuleParam{
				{Name: "weekly_hours_limit", Type: "float", Description: "每周工时上限", Value: fmt.Sprintf("%.0f", h.rules.WeeklyHoursLimit)},
				{Name: "critical_overtime_delta", Type: "float", Description: "升级为严重问题的加班时数", Value: fmt.Sprintf("%.0f", h.rules.CriticalOvertimeDelta)},
			},
		},
		{
			Name:        "double_booking",
			DisplayName: "重复排班检查",
			Category:    "排班冲突",
			Severity:    "warning",
			Description: "同一员工在同一天的两个班次时间重叠即为重复排班，按分钟精度比较。",
			Params:      []RuleParam{},
		},
		{
			Name:        "data_quality",
			DisplayName: "数据质量检查",
			Category:    "数据质量",
			Severity:    "warning",
			Description: "时间格式无效的班次单独标记，不计入覆盖与冲突分析。",
			Params:      []RuleParam{},
		},
	}

	respondJSON(w, http.StatusOK, RuleLibraryResponse{Library: library})
}
