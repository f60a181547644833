package engine

import (
	"testing"

	"github.com/hegui/hegui/pkg/model"
)

func TestGroupByDate(t *testing.T) {
	shifts := []*model.ShiftRecord{
		{EmployeeName: "王芳", Date: "2026-03-02"},
		{EmployeeName: "李娜", Date: "2026-03-03"},
		{EmployeeName: "张伟", Date: "2026-03-02"},
		{EmployeeName: "赵敏", Date: ""}, // 缺少日期，应排除
	}

	byDate := GroupByDate(shifts)

	if len(byDate) != 2 {
		t.Fatalf("日期分组数 = %d, expected 2", len(byDate))
	}
	if len(byDate["2026-03-02"]) != 2 {
		t.Errorf("2026-03-02 班次数 = %d, expected 2", len(byDate["2026-03-02"]))
	}
	if len(byDate["2026-03-03"]) != 1 {
		t.Errorf("2026-03-03 班次数 = %d, expected 1", len(byDate["2026-03-03"]))
	}

	// 组内保持输入顺序
	bucket := byDate["2026-03-02"]
	if bucket[0].EmployeeName != "王芳" || bucket[1].EmployeeName != "张伟" {
		t.Errorf("组内顺序错误: %s, %s", bucket[0].EmployeeName, bucket[1].EmployeeName)
	}
}

func TestGroupByDate_NilRecords(t *testing.T) {
	shifts := []*model.ShiftRecord{
		nil,
		{EmployeeName: "王芳", Date: "2026-03-02"},
	}

	byDate := GroupByDate(shifts)
	if len(byDate) != 1 {
		t.Errorf("日期分组数 = %d, expected 1", len(byDate))
	}
}

func TestSortedDates(t *testing.T) {
	byDate := map[string][]*model.ShiftRecord{
		"2026-03-05": nil,
		"2026-02-28": nil,
		"2026-03-01": nil,
	}

	dates := SortedDates(byDate)

	expected := []string{"2026-02-28", "2026-03-01", "2026-03-05"}
	if len(dates) != len(expected) {
		t.Fatalf("日期数 = %d, expected %d", len(dates), len(expected))
	}
	for i, date := range expected {
		if dates[i] != date {
			t.Errorf("dates[%d] = %s, expected %s", i, dates[i], date)
		}
	}
}
