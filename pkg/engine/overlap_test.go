package engine

import (
	"testing"

	"github.com/hegui/hegui/pkg/model"
)

// overlapShifts 构造冲突检测的输入
func overlapShifts(t *testing.T, shifts ...*model.ShiftRecord) []timedShift {
	t.Helper()
	timed, quality := splitByClock("2026-03-02", shifts)
	if len(quality) != 0 {
		t.Fatalf("不应产生数据质量问题: %v", quality)
	}
	return timed
}

func TestOverlapDetector_DetectsOverlap(t *testing.T) {
	detector := NewOverlapDetector()

	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "07:00", "15:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "14:00", "22:00"),
	)

	issues := detector.AnalyzeDate("2026-03-02", shifts)

	if len(issues) != 1 {
		t.Fatalf("问题数 = %d, expected 1", len(issues))
	}
	if issues[0].Type != model.IssueDoubleBooking {
		t.Errorf("Type = %s, expected %s", issues[0].Type, model.IssueDoubleBooking)
	}
	if issues[0].Severity != model.SeverityCritical {
		t.Errorf("Severity = %s, expected %s", issues[0].Severity, model.SeverityCritical)
	}
	if issues[0].Employee != "王芳" {
		t.Errorf("Employee = %q, expected 王芳", issues[0].Employee)
	}
	if len(issues[0].ShiftRefs) != 2 {
		t.Errorf("ShiftRefs数 = %d, expected 2", len(issues[0].ShiftRefs))
	}
}

func TestOverlapDetector_OrderIndependent(t *testing.T) {
	detector := NewOverlapDetector()

	a := covShift("王芳", model.RoleRN, "2026-03-02", "07:00", "15:00")
	b := covShift("王芳", model.RoleRN, "2026-03-02", "14:00", "22:00")

	// 无论输入顺序如何，同一对班次恰好报告一次
	forward := detector.AnalyzeDate("2026-03-02", overlapShifts(t, a, b))
	backward := detector.AnalyzeDate("2026-03-02", overlapShifts(t, b, a))

	if len(forward) != 1 || len(backward) != 1 {
		t.Errorf("问题数 = %d / %d, expected 1 / 1", len(forward), len(backward))
	}
}

func TestOverlapDetector_TouchingShiftsNoOverlap(t *testing.T) {
	detector := NewOverlapDetector()

	// 首尾相接不算冲突
	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "07:00", "15:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "15:00", "23:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 0 {
		t.Errorf("问题数 = %d, expected 0", len(issues))
	}
}

func TestOverlapDetector_MinuteComparison(t *testing.T) {
	detector := NewOverlapDetector()

	// 不补零的时间做字典序比较会判错，必须按分钟数比较
	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "9:00", "10:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "09:30", "11:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 1 {
		t.Errorf("问题数 = %d, expected 1", len(issues))
	}
}

func TestOverlapDetector_NameNormalization(t *testing.T) {
	detector := NewOverlapDetector()

	// 姓名大小写和首尾空白不同仍视为同一员工
	shifts := overlapShifts(t,
		covShift(" Mary Jones", model.RoleRN, "2026-03-02", "07:00", "15:00"),
		covShift("mary jones", model.RoleRN, "2026-03-02", "14:00", "22:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 1 {
		t.Errorf("问题数 = %d, expected 1", len(issues))
	}
}

func TestOverlapDetector_DifferentEmployees(t *testing.T) {
	detector := NewOverlapDetector()

	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "07:00", "15:00"),
		covShift("李娜", model.RoleRN, "2026-03-02", "07:00", "15:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 0 {
		t.Errorf("不同员工的班次不应冲突, 问题数 = %d", len(issues))
	}
}

func TestOverlapDetector_OvernightOverlap(t *testing.T) {
	detector := NewOverlapDetector()

	// 两个跨午夜班次相交
	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "22:00", "06:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "23:00", "07:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 1 {
		t.Errorf("问题数 = %d, expected 1", len(issues))
	}
}

func TestOverlapDetector_ThreeWayOverlap(t *testing.T) {
	detector := NewOverlapDetector()

	// 三个两两相交的班次报告三对
	shifts := overlapShifts(t,
		covShift("王芳", model.RoleRN, "2026-03-02", "08:00", "12:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "09:00", "13:00"),
		covShift("王芳", model.RoleRN, "2026-03-02", "10:00", "14:00"),
	)

	if issues := detector.AnalyzeDate("2026-03-02", shifts); len(issues) != 3 {
		t.Errorf("问题数 = %d, expected 3", len(issues))
	}
}
