// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hegui/hegui/internal/metrics"
	"github.com/hegui/hegui/internal/repository"
	"github.com/hegui/hegui/pkg/advisory"
	"github.com/hegui/hegui/pkg/engine"
	"github.com/hegui/hegui/pkg/errors"
	"github.com/hegui/hegui/pkg/logger"
	"github.com/hegui/hegui/pkg/model"
)

// ComplianceHandler 合规审查处理器
type ComplianceHandler struct {
	engine   *engine.Engine
	rules    engine.RuleConfig
	advisory *advisory.Client
	repo     repository.AnalysisRepositoryInterface
	log      *logger.ComplianceLogger
}

// NewComplianceHandler 创建合规审查处理器
// repo 为 nil 时不持久化审查记录
func NewComplianceHandler(rules engine.RuleConfig, advisoryClient *advisory.Client, repo repository.AnalysisRepositoryInterface) *ComplianceHandler {
	return &ComplianceHandler{
		engine:   engine.New(rules),
		rules:    rules,
		advisory: advisoryClient,
		repo:     repo,
		log:      logger.NewComplianceLogger(),
	}
}

// ShiftInput 班次记录输入
type ShiftInput struct {
	EmployeeName string  `json:"employee_name"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	Role         string  `json:"role"`
	Date         string  `json:"date"`       // YYYY-MM-DD
	StartTime    string  `json:"start_time"` // HH:MM
	EndTime      string  `json:"end_time"`   // HH:MM
	Hours        float64 `json:"hours,omitempty"`
	Unit         string  `json:"unit,omitempty"`
}

// AnalyzeRequest 合规审查请求
type AnalyzeRequest struct {
	Shifts           []ShiftInput `json:"shifts"`
	FacilityCapacity int          `json:"facility_capacity,omitempty"`
}

// IssueOutput 合规问题输出
type IssueOutput struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Source      string   `json:"source"`
	Date        string   `json:"date,omitempty"`
	Employee    string   `json:"employee,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ShiftRefs   []string `json:"shift_refs,omitempty"`
}

// AnalyzeResponse 合规审查响应
type AnalyzeResponse struct {
	RunID            string        `json:"run_id"`
	TotalShifts      int           `json:"total_shifts"`
	ComplianceIssues []IssueOutput `json:"compliance_issues"`
	CriticalIssues   int           `json:"critical_issues"`
	Warnings         int           `json:"warnings"`
	ParseErrors      []string      `json:"parse_errors,omitempty"`
	Duration         string        `json:"duration"`
}

// Analyze 执行排班合规审查
// 请求体为 JSON，或携带 file 字段的 multipart CSV
func (h *ComplianceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	shifts, capacity, parseErrors, appErr := h.parseRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	if len(shifts) == 0 && len(parseErrors) > 0 {
		appErr := errors.NoValidShifts("所有记录解析失败")
		appErr.WithField("parse_errors", parseErrors)
		respondError(w, appErr)
		return
	}

	start := time.Now()

	result, err := h.engine.Run(r.Context(), shifts, capacity)
	if err != nil {
		metrics.RecordAnalysis(false, len(shifts), time.Since(start))
		respondError(w, toAppError(err))
		return
	}

	runID := uuid.New()

	// 辅助分析失败只降级，不影响确定性结果
	if h.advisory != nil && h.advisory.Enabled() {
		h.runAdvisory(r.Context(), runID.String(), result)
	}

	duration := time.Since(start)
	metrics.RecordAnalysis(true, result.TotalShifts, duration)
	for _, issue := range result.ComplianceIssues {
		metrics.RecordIssue(string(issue.Type), string(issue.Severity))
	}

	// 持久化失败不阻塞响应
	if h.repo != nil {
		h.persist(r.Context(), runID, result, capacity, duration)
	}

	respondJSON(w, http.StatusOK, buildAnalyzeResponse(runID.String(), result, parseErrors, duration))
}

// parseRequest 解析 JSON 或 multipart CSV 请求
func (h *ComplianceHandler) parseRequest(r *http.Request) ([]*model.ShiftRecord, int, []string, *errors.AppError) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.parseCSVRequest(r)
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, 0, nil, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	if len(req.Shifts) == 0 {
		return nil, 0, nil, errors.New(errors.CodeInvalidInput, "班次列表不能为空")
	}

	shifts := make([]*model.ShiftRecord, 0, len(req.Shifts))
	var parseErrors []string
	for i, in := range req.Shifts {
		rec, err := h.buildRecord(in)
		if err != nil {
			parseErrors = append(parseErrors, shiftInputError(i+1, err))
			continue
		}
		shifts = append(shifts, rec)
	}

	return shifts, req.FacilityCapacity, parseErrors, nil
}

// buildRecord 将输入转换为班次记录
// 工时缺失时按打卡时间推算，跨夜班次按次日清晨计算
func (h *ComplianceHandler) buildRecord(in ShiftInput) (*model.ShiftRecord, error) {
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	rec := &model.ShiftRecord{
		EmployeeName: strings.TrimSpace(in.EmployeeName),
		EmployeeID:   strings.TrimSpace(in.EmployeeID),
		Role:         role,
		Date:         strings.TrimSpace(in.Date),
		StartTime:    strings.TrimSpace(in.StartTime),
		EndTime:      strings.TrimSpace(in.EndTime),
		Hours:        in.Hours,
		Unit:         strings.TrimSpace(in.Unit),
	}

	if rec.Hours == 0 {
		startMin, serr := rec.StartMinutes()
		endMin, eerr := rec.EndMinutes()
		if serr == nil && eerr == nil {
			span := endMin - startMin
			if span <= 0 {
				span += 24 * 60
			}
			rec.Hours = float64(span) / 60.0
		}
	}

	rec.IsOvertime = h.rules.DailyOvertimeHours > 0 && rec.Hours > h.rules.DailyOvertimeHours

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// runAdvisory 调用外部辅助分析并合并发现
func (h *ComplianceHandler) runAdvisory(ctx context.Context, runID string, result *model.AnalysisResult) {
	advisoryCtx, cancel := context.WithTimeout(ctx, h.advisory.Timeout())
	defer cancel()

	req := advisory.BuildRequest(result, nil)
	findings, err := h.advisory.Advise(advisoryCtx, req)
	if err != nil {
		metrics.RecordAdvisory(false)
		h.log.AdvisorySkipped(runID, errors.AdvisoryUnavailable(err))
		return
	}

	metrics.RecordAdvisory(true)
	engine.AppendAdvisory(result, findings)
}

// persist 保存审查记录，失败只记录日志
func (h *ComplianceHandler) persist(ctx context.Context, runID uuid.UUID, result *model.AnalysisResult, capacity int, duration time.Duration) {
	run := &repository.AnalysisRun{
		ID:             runID,
		TotalShifts:    result.TotalShifts,
		CriticalIssues: result.CriticalIssues,
		Warnings:       result.Warnings,
		FacilityCap:    capacity,
		DurationMs:     duration.Milliseconds(),
	}
	if err := h.repo.Save(ctx, run, result.ComplianceIssues); err != nil {
		logger.Error().Err(err).Str("run_id", runID.String()).Msg("保存审查记录失败")
	}
}

// buildAnalyzeResponse 构建审查响应
func buildAnalyzeResponse(runID string, result *model.AnalysisResult, parseErrors []string, duration time.Duration) AnalyzeResponse {
	issues := make([]IssueOutput, len(result.ComplianceIssues))
	for i, issue := range result.ComplianceIssues {
		issues[i] = IssueOutput{
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

	return AnalyzeResponse{
		RunID:            runID,
		TotalShifts:      result.TotalShifts,
		ComplianceIssues: issues,
		CriticalIssues:   result.CriticalIssues,
		Warnings:         result.Warnings,
		ParseErrors:      parseErrors,
		Duration:         duration.String(),
	}
}

// toAppError 将引擎错误转换为应用错误
func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeAnalysisFailed, "合规审查失败")
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"fields":  err.Fields,
	})
}
