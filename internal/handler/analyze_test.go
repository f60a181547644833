package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hegui/hegui/pkg/advisory"
	"github.com/hegui/hegui/pkg/engine"
)

func newTestHandler() *ComplianceHandler {
	return NewComplianceHandler(engine.DefaultRuleConfig(), nil, nil)
}

func postJSON(t *testing.T, h *ComplianceHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/analyze", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)
	return rec
}

func TestAnalyzeJSON(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(t, h, AnalyzeRequest{
		Shifts: []ShiftInput{
			{EmployeeName: "张护士", Role: "RN", Date: "2026-03-02", StartTime: "07:00", EndTime: "15:00", Hours: 8},
			{EmployeeName: "李护士", Role: "LPN", Date: "2026-03-02", StartTime: "15:00", EndTime: "23:00", Hours: 8},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码期望 200，实际 %d: %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if resp.RunID == "" {
		t.Error("run_id 不应为空")
	}
	if resp.TotalShifts != 2 {
		t.Errorf("total_shifts 期望 2，实际 %d", resp.TotalShifts)
	}
	// 夜间无注册护士在岗，必然存在严重覆盖问题
	if resp.CriticalIssues == 0 {
		t.Error("应检出严重问题")
	}

	critical, warnings := 0, 0
	for _, issue := range resp.ComplianceIssues {
		switch issue.Severity {
		case "critical":
			critical++
		case "warning":
			warnings++
		}
		if issue.Source != "engine" {
			t.Errorf("确定性检查的问题来源应为 engine，实际 %q", issue.Source)
		}
	}
	if critical != resp.CriticalIssues || warnings != resp.Warnings {
		t.Errorf("汇总计数与问题列表不一致: critical %d/%d warnings %d/%d",
			resp.CriticalIssues, critical, resp.Warnings, warnings)
	}
}

func TestAnalyzeDerivesHours(t *testing.T) {
	h := newTestHandler()

	rec, err := h.buildRecord(ShiftInput{
		EmployeeName: "王护士", Role: "RN", Date: "2026-03-02",
		StartTime: "22:00", EndTime: "06:00",
	})
	if err != nil {
		t.Fatalf("buildRecord failed: %v", err)
	}
	if rec.Hours != 8 {
		t.Errorf("跨夜班工时期望 8，实际 %.2f", rec.Hours)
	}
	if rec.IsOvertime {
		t.Error("8小时班次不应标记为加班")
	}

	long, err := h.buildRecord(ShiftInput{
		EmployeeName: "王护士", Role: "RN", Date: "2026-03-02",
		StartTime: "07:00", EndTime: "19:00", Hours: 12,
	})
	if err != nil {
		t.Fatalf("buildRecord failed: %v", err)
	}
	if !long.IsOvertime {
		t.Error("12小时班次应标记为加班")
	}
}

func TestAnalyzeEmptyShifts(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(t, h, AnalyzeRequest{Shifts: nil})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("空班次列表应返回 400，实际 %d", rec.Code)
	}
}

func TestAnalyzeAllRowsInvalid(t *testing.T) {
	h := newTestHandler()

	rec := postJSON(t, h, AnalyzeRequest{
		Shifts: []ShiftInput{
			{EmployeeName: "张三", Role: "厨师", Date: "2026-03-02", StartTime: "08:00", EndTime: "16:00"},
		},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("全部记录无效应返回 422，实际 %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "NO_VALID_SHIFTS") {
		t.Errorf("响应应包含 NO_VALID_SHIFTS 错误码: %s", rec.Body.String())
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliance/analyze", nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET 请求应被拒绝，实际 %d", rec.Code)
	}
}

func TestAnalyzeCSVUpload(t *testing.T) {
	h := newTestHandler()

	csvData := "employee_name,role,date,start_time,end_time,hours\n" +
		"张护士,RN,2026-03-02,07:00,15:00,8\n" +
		"李护士,保洁,2026-03-02,15:00,23:00,8\n" +
		"王护士,CNA,2026-03-02,23:00,07:00,8\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "schedule.csv")
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}
	part.Write([]byte(csvData))
	writer.WriteField("facility_capacity", "100")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/analyze", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码期望 200，实际 %d: %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if resp.TotalShifts != 2 {
		t.Errorf("有效班次期望 2，实际 %d", resp.TotalShifts)
	}
	if len(resp.ParseErrors) != 1 {
		t.Errorf("坏行期望 1 条解析错误，实际 %v", resp.ParseErrors)
	}
}

func TestAnalyzeCSVMissingColumn(t *testing.T) {
	h := newTestHandler()

	csvData := "employee_name,role,date\n张护士,RN,2026-03-02\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "schedule.csv")
	part.Write([]byte(csvData))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/analyze", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("缺少必需列应返回 400，实际 %d", rec.Code)
	}
}

func TestAnalyzeWithAdvisory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"findings": []map[string]interface{}{
				{"message": "建议核查夜班护理员资质", "suggestions": []string{"补充执业证书记录"}},
			},
		})
	}))
	defer server.Close()

	client := advisory.New(advisory.Config{Enabled: true, Endpoint: server.URL})
	h := NewComplianceHandler(engine.DefaultRuleConfig(), client, nil)

	rec := postJSON(t, h, AnalyzeRequest{
		Shifts: []ShiftInput{
			{EmployeeName: "张护士", Role: "RN", Date: "2026-03-02", StartTime: "07:00", EndTime: "15:00", Hours: 8},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码期望 200，实际 %d", rec.Code)
	}

	var resp AnalyzeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	found := false
	for _, issue := range resp.ComplianceIssues {
		if issue.Source == "advisory" {
			found = true
			if issue.Severity != "info" {
				t.Errorf("辅助分析发现默认严重程度应为 info，实际 %q", issue.Severity)
			}
		}
	}
	if !found {
		t.Error("响应应包含辅助分析发现")
	}
}

func TestAnalyzeAdvisoryFailureNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := advisory.New(advisory.Config{Enabled: true, Endpoint: server.URL})
	h := NewComplianceHandler(engine.DefaultRuleConfig(), client, nil)

	rec := postJSON(t, h, AnalyzeRequest{
		Shifts: []ShiftInput{
			{EmployeeName: "张护士", Role: "RN", Date: "2026-03-02", StartTime: "07:00", EndTime: "15:00", Hours: 8},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("辅助分析失败不应影响审查结果，实际状态码 %d", rec.Code)
	}

	var resp AnalyzeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	for _, issue := range resp.ComplianceIssues {
		if issue.Source == "advisory" {
			t.Error("辅助分析失败时不应出现 advisory 来源的问题")
		}
	}
}

func TestRulesEndpoint(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliance/rules", nil)
	rec := httptest.NewRecorder()
	h.Rules(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码期望 200，实际 %d", rec.Code)
	}

	var resp RuleLibraryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if len(resp.Library) == 0 {
		t.Fatal("规则库不应为空")
	}

	names := make(map[string]bool)
	for _, rule := range resp.Library {
		names[rule.Name] = true
	}
	for _, expected := range []string{"min_total_ppd", "min_rn_ppd", "rn_coverage", "weekly_overtime", "double_booking", "data_quality"} {
		if !names[expected] {
			t.Errorf("规则库缺少 %s", expected)
		}
	}
}

func TestRunsWithoutRepository(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliance/runs", nil)
	rec := httptest.NewRecorder()
	h.Runs(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("未启用持久化时应返回 404，实际 %d", rec.Code)
	}
}
