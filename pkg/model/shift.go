// Package model 定义合规审查引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role 岗位角色
type Role string

const (
	RoleRN          Role = "RN"          // 注册护士
	RoleLPN         Role = "LPN"         // 执业护士
	RoleCNA         Role = "CNA"         // 护理助理
	RoleUnitManager Role = "UnitManager" // 病区主管
	RoleOther       Role = "Other"       // 其他
)

// IsNursing 检查角色是否计入护理工时
func (r Role) IsNursing() bool {
	return r == RoleRN || r == RoleLPN || r == RoleCNA
}

// ParseRole 解析角色标识
// 无法识别的标识返回错误，由上游解析器记录为行级错误
func ParseRole(token string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "RN":
		return RoleRN, nil
	case "LPN", "LVN":
		return RoleLPN, nil
	case "CNA":
		return RoleCNA, nil
	case "UNITMANAGER", "UNIT_MANAGER", "UM":
		return RoleUnitManager, nil
	case "OTHER":
		return RoleOther, nil
	default:
		return "", fmt.Errorf("无效的角色标识: %q", token)
	}
}

// ShiftRecord 班次记录（输入，校验后不可变）
type ShiftRecord struct {
	EmployeeName string  `json:"employee_name"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	Role         Role    `json:"role"`
	Date         string  `json:"date"`       // YYYY-MM-DD
	StartTime    string  `json:"start_time"` // HH:MM
	EndTime      string  `json:"end_time"`   // HH:MM
	Hours        float64 `json:"hours"`      // 排班时长（可能已扣除休息时间）
	Unit         string  `json:"unit,omitempty"`
	IsOvertime   bool    `json:"is_overtime"` // 派生字段，仅供参考；加班判定以周工时为准
}

// Validate 校验班次记录
func (s *ShiftRecord) Validate() error {
	if strings.TrimSpace(s.EmployeeName) == "" {
		return fmt.Errorf("员工姓名不能为空")
	}
	if s.Hours <= 0 {
		return fmt.Errorf("班次时长必须大于0: %.2f", s.Hours)
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return fmt.Errorf("无效的日期: %q", s.Date)
	}
	return nil
}

// NormalizedName 返回规范化的员工姓名（用于分组比较）
func (s *ShiftRecord) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(s.EmployeeName))
}

// StartMinutes 返回开始时间（自午夜起的分钟数）
func (s *ShiftRecord) StartMinutes() (int, error) {
	return ParseClock(s.StartTime)
}

// EndMinutes 返回结束时间（自午夜起的分钟数）
func (s *ShiftRecord) EndMinutes() (int, error) {
	return ParseClock(s.EndTime)
}

// CrossesMidnight 检查班次是否跨午夜
// 时间无法解析时返回false
func (s *ShiftRecord) CrossesMidnight() bool {
	start, err1 := s.StartMinutes()
	end, err2 := s.EndMinutes()
	if err1 != nil || err2 != nil {
		return false
	}
	return end <= start
}

// Ref 返回班次的追溯标识
func (s *ShiftRecord) Ref() string {
	return fmt.Sprintf("%s %s %s-%s", s.EmployeeName, s.Date, s.StartTime, s.EndTime)
}

// ParseClock 解析 HH:MM 时间为自午夜起的分钟数
// 时间比较必须使用分钟数，禁止对 HH:MM 字符串做字典序比较
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("无效的时间格式: %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("无效的小时: %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("无效的分钟: %q", clock)
	}
	// 允许 24:00 表示当日结束
	if hour == 24 && minute == 0 {
		return 24 * 60, nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("时间超出范围: %q", clock)
	}
	return hour*60 + minute, nil
}

// FormatClock 将自午夜起的分钟数格式化为 HH:MM
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NextDate 返回后一天日期
func NextDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}
