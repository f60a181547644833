// Package engine 提供排班合规审查引擎
package engine

import (
	"fmt"

	"github.com/hegui/hegui/pkg/model"
)

// DailyRatio 某日期的护理工时配比指标
type DailyRatio struct {
	Date              string  `json:"date"`
	RNHours           float64 `json:"rn_hours"`
	LPNHours          float64 `json:"lpn_hours"`
	CNAHours          float64 `json:"cna_hours"`
	TotalNursingHours float64 `json:"total_nursing_hours"`
	Census            float64 `json:"census"`
	CensusEstimated   bool    `json:"census_estimated"` // 住养人数为估算值
	TotalPPD          float64 `json:"total_ppd"`
	RNPPD             float64 `json:"rn_ppd"`
}

// RatioAnalyzer 护理工时配比分析器
type RatioAnalyzer struct {
	cfg RuleConfig
}

// NewRatioAnalyzer 创建配比分析器
func NewRatioAnalyzer(cfg RuleConfig) *RatioAnalyzer {
	return &RatioAnalyzer{cfg: cfg.normalized()}
}

// AnalyzeDate 分析某日期的护理工时配比
// capacity 为机构床位数，0 表示未知，此时使用默认住养人数估算
// 总工时与注册护士工时两项检查相互独立，可同时产生问题
func (a *RatioAnalyzer) AnalyzeDate(date string, shifts []*model.ShiftRecord, capacity int) (*DailyRatio, []model.ComplianceIssue) {
	ratio := &DailyRatio{Date: date}

	for _, s := range shifts {
		switch s.Role {
		case model.RoleRN:
			ratio.RNHours += s.Hours
		case model.RoleLPN:
			ratio.LPNHours += s.Hours
		case model.RoleCNA:
			ratio.CNAHours += s.Hours
		}
	}
	ratio.TotalNursingHours = ratio.RNHours + ratio.LPNHours + ratio.CNAHours

	if capacity > 0 {
		ratio.Census = float64(capacity) * a.cfg.CapacityFactor
	} else {
		ratio.Census = a.cfg.FallbackCensus
		ratio.CensusEstimated = true
	}

	ratio.TotalPPD = ratio.TotalNursingHours / ratio.Census
	ratio.RNPPD = ratio.RNHours / ratio.Census

	var issues []model.ComplianceIssue

	censusNote := ""
	if ratio.CensusEstimated {
		// 默认住养人数是估算值，必须在消息中可见
		censusNote = fmt.Sprintf("；床位数未知，按默认住养人数 %.0f 估算", ratio.Census)
	}

	if ratio.TotalPPD < a.cfg.MinTotalPPD {
		issues = append(issues, model.NewIssue(
			model.IssueStaffingRatio,
			model.SeverityCritical,
			fmt.Sprintf("%s 护理总工时配比不足: %.2f PPD，低于要求的 %.2f（护理工时 %.1f，住养人数 %.1f%s）",
				date, ratio.TotalPPD, a.cfg.MinTotalPPD, ratio.TotalNursingHours, ratio.Census, censusNote),
			"增加当日护理班次工时",
			"在各班次间重新平衡人员分配",
			"核实住养人数估算是否准确",
		).WithDate(date))
	}

	if ratio.RNPPD < a.cfg.MinRNPPD {
		issues = append(issues, model.NewIssue(
			model.IssueStaffingRatio,
			model.SeverityCritical,
			fmt.Sprintf("%s 注册护士工时配比不足: %.2f PPD，低于要求的 %.2f（注册护士工时 %.1f，住养人数 %.1f%s）",
				date, ratio.RNPPD, a.cfg.MinRNPPD, ratio.RNHours, ratio.Census, censusNote),
			"增加当日注册护士班次",
			"将部分班次调整为注册护士承担",
			"核实住养人数估算是否准确",
		).WithDate(date))
	}

	return ratio, issues
}
