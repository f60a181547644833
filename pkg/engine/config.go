// Package engine 提供排班合规审查引擎
package engine

// RuleConfig 监管规则阈值配置
// 阈值随辖区和年份变化，必须由调用方注入，不做模块级常量
type RuleConfig struct {
	MinTotalPPD           float64 // 每住养人日最低护理总工时
	MinRNPPD              float64 // 每住养人日最低注册护士工时
	CapacityFactor        float64 // 床位数到住养人数的折算系数
	FallbackCensus        float64 // 床位数未知时的默认住养人数（估算值，非监管值）
	WeeklyHoursLimit      float64 // 周工时上限
	CriticalOvertimeDelta float64 // 超出该幅度的加班升级为严重
	MinStaffPerHour       int     // 每小时最低在岗人数
	DailyOvertimeHours    float64 // 单班超过该时长标记为加班（仅供参考）
}

// DefaultRuleConfig 返回默认规则配置
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		MinTotalPPD:           3.2,
		MinRNPPD:              0.75,
		CapacityFactor:        0.85,
		FallbackCensus:        45,
		WeeklyHoursLimit:      40,
		CriticalOvertimeDelta: 16,
		MinStaffPerHour:       2,
		DailyOvertimeHours:    8,
	}
}

// normalized 返回填补非法取值后的配置
// 默认住养人数不允许为零，否则配比计算会除零
func (c RuleConfig) normalized() RuleConfig {
	defaults := DefaultRuleConfig()
	if c.FallbackCensus <= 0 {
		c.FallbackCensus = defaults.FallbackCensus
	}
	if c.CapacityFactor <= 0 {
		c.CapacityFactor = defaults.CapacityFactor
	}
	if c.WeeklyHoursLimit <= 0 {
		c.WeeklyHoursLimit = defaults.WeeklyHoursLimit
	}
	if c.CriticalOvertimeDelta <= 0 {
		c.CriticalOvertimeDelta = defaults.CriticalOvertimeDelta
	}
	if c.MinStaffPerHour <= 0 {
		c.MinStaffPerHour = defaults.MinStaffPerHour
	}
	if c.DailyOvertimeHours <= 0 {
		c.DailyOvertimeHours = defaults.DailyOvertimeHours
	}
	return c
}
