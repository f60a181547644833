package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hegui/hegui/pkg/errors"
	"github.com/hegui/hegui/pkg/model"
)

// maxUploadSize CSV上传大小上限
const maxUploadSize = 10 << 20 // 10MB

// csvColumns 列名到标准字段的映射，兼容常见的表头别名
var csvColumns = map[string]string{
	"employee_name": "employee_name",
	"name":          "employee_name",
	"employee":      "employee_name",
	"employee_id":   "employee_id",
	"id":            "employee_id",
	"role":          "role",
	"position":      "role",
	"date":          "date",
	"shift_date":    "date",
	"start_time":    "start_time",
	"start":         "start_time",
	"end_time":      "end_time",
	"end":           "end_time",
	"hours":         "hours",
	"unit":          "unit",
	"department":    "unit",
}

// parseCSVRequest 解析 multipart 表单中的 CSV 排班表
// 坏行跳过并记入 parse_errors，不会中断整个审查
func (h *ComplianceHandler) parseCSVRequest(r *http.Request) ([]*model.ShiftRecord, int, []string, *errors.AppError) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, 0, nil, errors.Wrap(err, errors.CodeInvalidInput, "解析上传表单失败")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, 0, nil, errors.Wrap(err, errors.CodeInvalidInput, "缺少 file 字段")
	}
	defer file.Close()

	capacity := 0
	if raw := r.FormValue("facility_capacity"); raw != "" {
		if c, err := strconv.Atoi(raw); err == nil && c > 0 {
			capacity = c
		}
	}

	shifts, parseErrors, appErr := h.parseCSV(file)
	if appErr != nil {
		return nil, 0, nil, appErr
	}

	return shifts, capacity, parseErrors, nil
}

// parseCSV 逐行读取 CSV 并转换为班次记录
func (h *ComplianceHandler) parseCSV(reader io.Reader) ([]*model.ShiftRecord, []string, *errors.AppError) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidInput, "读取CSV表头失败")
	}

	// 建立列索引
	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if field, ok := csvColumns[key]; ok {
			if _, exists := index[field]; !exists {
				index[field] = i
			}
		}
	}

	for _, required := range []string{"employee_name", "role", "date", "start_time", "end_time"} {
		if _, ok := index[required]; !ok {
			return nil, nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("CSV缺少必需列: %s", required))
		}
	}

	var shifts []*model.ShiftRecord
	var parseErrors []string
	line := 1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("第 %d 行: 读取失败: %v", line, err))
			continue
		}

		in := ShiftInput{
			EmployeeName: cell(row, index, "employee_name"),
			EmployeeID:   cell(row, index, "employee_id"),
			Role:         cell(row, index, "role"),
			Date:         cell(row, index, "date"),
			StartTime:    cell(row, index, "start_time"),
			EndTime:      cell(row, index, "end_time"),
			Unit:         cell(row, index, "unit"),
		}
		if raw := cell(row, index, "hours"); raw != "" {
			if hours, err := strconv.ParseFloat(raw, 64); err == nil {
				in.Hours = hours
			} else {
				parseErrors = append(parseErrors, fmt.Sprintf("第 %d 行: 工时格式无效: %q", line, raw))
				continue
			}
		}

		rec, err := h.buildRecord(in)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("第 %d 行: %v", line, err))
			continue
		}
		shifts = append(shifts, rec)
	}

	return shifts, parseErrors, nil
}

// cell 安全取列值
func cell(row []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// shiftInputError 格式化JSON输入条目错误
func shiftInputError(position int, err error) string {
	return fmt.Sprintf("第 %d 条记录: %v", position, err)
}
