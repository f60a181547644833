package advisory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hegui/hegui/pkg/model"
)

func TestClientDisabled(t *testing.T) {
	c := New(Config{Enabled: false, Endpoint: "http://example.invalid"})

	issues, err := c.Advise(context.Background(), &Request{})
	if err != nil {
		t.Errorf("禁用状态下不应返回错误: %v", err)
	}
	if issues != nil {
		t.Errorf("禁用状态下应返回 nil，实际 %v", issues)
	}
}

func TestClientAdvise(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("解析请求失败: %v", err)
		}
		if req.TotalShifts != 12 {
			t.Errorf("total_shifts 期望 12，实际 %d", req.TotalShifts)
		}

		json.NewEncoder(w).Encode(adviseResponse{
			Findings: []Finding{
				{Type: "staffing_ratio", Severity: "warning", Message: "建议在周末增加注册护士排班"},
				{Message: "建议核查新入职护理员的执业资质"},
				{Severity: "info", Message: ""},
			},
		})
	}))
	defer server.Close()

	c := New(Config{Enabled: true, Endpoint: server.URL, APIKey: "test-key"})

	issues, err := c.Advise(context.Background(), &Request{TotalShifts: 12})
	if err != nil {
		t.Fatalf("调用失败: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization 头错误: %q", gotAuth)
	}
	if len(issues) != 2 {
		t.Fatalf("期望 2 条发现（空消息应被丢弃），实际 %d", len(issues))
	}

	if issues[0].Type != model.IssueStaffingRatio {
		t.Errorf("第一条类型期望 staffing_ratio，实际 %s", issues[0].Type)
	}
	if issues[0].Severity != model.SeverityWarning {
		t.Errorf("第一条严重程度期望 warning，实际 %s", issues[0].Severity)
	}

	if issues[1].Type != model.IssueLicenseRequirement {
		t.Errorf("未知类型应归入 license_requirement，实际 %s", issues[1].Type)
	}
	if issues[1].Severity != "" {
		t.Errorf("缺失严重程度应留空交由合并阶段处理，实际 %q", issues[1].Severity)
	}
}

func TestClientAdviseServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(Config{Enabled: true, Endpoint: server.URL})

	if _, err := c.Advise(context.Background(), &Request{}); err == nil {
		t.Error("服务端错误时应返回错误")
	}
}

func TestClientAdviseTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(Config{Enabled: true, Endpoint: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Advise(ctx, &Request{}); err == nil {
		t.Error("超时应返回错误")
	}
}

func TestBuildRequest(t *testing.T) {
	result := &model.AnalysisResult{
		TotalShifts:    5,
		CriticalIssues: 1,
		Warnings:       2,
		ComplianceIssues: []model.ComplianceIssue{
			{Type: model.IssueCoverageGap, Severity: model.SeverityCritical, Message: "02:00 无注册护士在岗"},
		},
	}

	req := BuildRequest(result, []string{"2026-03-01"})
	if req.TotalShifts != 5 || req.CriticalIssues != 1 || req.Warnings != 2 {
		t.Errorf("摘要计数错误: %+v", req)
	}
	if len(req.Issues) != 1 || req.Issues[0].Type != "coverage_gap" {
		t.Errorf("问题摘要错误: %+v", req.Issues)
	}
}
