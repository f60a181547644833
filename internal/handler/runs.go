package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hegui/hegui/internal/repository"
	"github.com/hegui/hegui/pkg/errors"
)

// RunOutput 审查记录输出
type RunOutput struct {
	ID             string `json:"id"`
	TotalShifts    int    `json:"total_shifts"`
	CriticalIssues int    `json:"critical_issues"`
	Warnings       int    `json:"warnings"`
	FacilityCap    int    `json:"facility_capacity"`
	DurationMs     int64  `json:"duration_ms"`
	CreatedAt      string `json:"created_at"`
}

// RunListResponse 审查记录列表响应
type RunListResponse struct {
	Runs  []RunOutput `json:"runs"`
	Total int         `json:"total"`
}

// RunDetailResponse 审查记录详情响应
type RunDetailResponse struct {
	Run    RunOutput     `json:"run"`
	Issues []IssueOutput `json:"issues"`
}

// Runs 查询历史审查记录
// GET /api/v1/compliance/runs 返回列表
// GET /api/v1/compliance/runs/{id} 返回单条详情
func (h *ComplianceHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeNotFound, "审查记录持久化未启用"))
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/compliance/runs"), "/")
	if rest != "" {
		h.getRun(w, r, rest)
		return
	}

	filter := repository.DefaultListFilter()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			filter = filter.WithLimit(limit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			filter = filter.WithOffset(offset)
		}
	}

	runs, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询审查记录失败"))
		return
	}

	outputs := make([]RunOutput, len(runs))
	for i, run := range runs {
		outputs[i] = buildRunOutput(run)
	}

	respondJSON(w, http.StatusOK, RunListResponse{Runs: outputs, Total: total})
}

// getRun 返回单条审查记录及其全部问题
func (h *ComplianceHandler) getRun(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的审查记录ID"))
		return
	}

	run, issues, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询审查记录失败"))
		return
	}
	if run == nil {
		respondError(w, errors.New(errors.CodeNotFound, "审查记录不存在"))
		return
	}

	outputs := make([]IssueOutput, len(issues))
	for i, issue := range issues {
		outputs[i] = IssueOutput{
			ID:          issue.ID.String(),
			Type:        string(issue.Type),
			Severity:    string(issue.Severity),
			Source:      string(issue.Source),
			Date:        issue.Date,
			Employee:    issue.Employee,
			Message:     issue.Message,
			Suggestions: issue.Suggestions,
			ShiftRefs:   issue.ShiftRefs,
		}
	}

	respondJSON(w, http.StatusOK, RunDetailResponse{Run: buildRunOutput(run), Issues: outputs})
}

// buildRunOutput 构建审查记录输出
func buildRunOutput(run *repository.AnalysisRun) RunOutput {
	return RunOutput{
		ID:             run.ID.String(),
		TotalShifts:    run.TotalShifts,
		CriticalIssues: run.CriticalIssues,
		Warnings:       run.Warnings,
		FacilityCap:    run.FacilityCap,
		DurationMs:     run.DurationMs,
		CreatedAt:      run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
