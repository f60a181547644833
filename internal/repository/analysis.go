// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hegui/hegui/pkg/model"
)

// AnalysisRun 一次合规审查的持久化记录
type AnalysisRun struct {
	ID             uuid.UUID `json:"id"`
	TotalShifts    int       `json:"total_shifts"`
	CriticalIssues int       `json:"critical_issues"`
	Warnings       int       `json:"warnings"`
	FacilityCap    int       `json:"facility_capacity"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// AnalysisRepositoryInterface 审查记录仓储接口
type AnalysisRepositoryInterface interface {
	Save(ctx context.Context, run *AnalysisRun, issues []model.ComplianceIssue) error
	GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRun, []model.ComplianceIssue, error)
	List(ctx context.Context, filter ListFilter) ([]*AnalysisRun, int, error)
}

// AnalysisRepository 审查记录仓储实现
type AnalysisRepository struct {
	db DB
}

// NewAnalysisRepository 创建审查记录仓储
func NewAnalysisRepository(db DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save 保存审查记录及其全部问题
func (r *AnalysisRepository) Save(ctx context.Context, run *AnalysisRun, issues []model.ComplianceIssue) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO analysis_runs (
			id, total_shifts, critical_issues, warnings,
			facility_capacity, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.TotalShifts, run.CriticalIssues, run.Warnings,
		run.FacilityCap, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存审查记录失败: %w", err)
	}

	for _, issue := range issues {
		if err := r.saveIssue(ctx, run.ID, issue); err != nil {
			return err
		}
	}

	return nil
}

// saveIssue 保存单条合规问题
func (r *AnalysisRepository) saveIssue(ctx context.Context, runID uuid.UUID, issue model.ComplianceIssue) error {
	suggestionsJSON, _ := json.Marshal(issue.Suggestions)
	refsJSON, _ := json.Marshal(issue.ShiftRefs)

	query := `
		INSERT INTO analysis_issues (
			id, run_id, type, severity, source, date, employee,
			message, suggestions, shift_refs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		issue.ID, runID, string(issue.Type), string(issue.Severity), string(issue.Source),
		issue.Date, issue.Employee, issue.Message, suggestionsJSON, refsJSON,
	)
	if err != nil {
		return fmt.Errorf("保存合规问题失败: %w", err)
	}
	return nil
}

// GetByID 根据ID获取审查记录及其问题
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRun, []model.ComplianceIssue, error) {
	query := `
		SELECT id, total_shifts, critical_issues, warnings,
			facility_capacity, duration_ms, created_at
		FROM analysis_runs
		WHERE id = $1
	`

	run := &AnalysisRun{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.TotalShifts, &run.CriticalIssues, &run.Warnings,
		&run.FacilityCap, &run.DurationMs, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("扫描审查记录失败: %w", err)
	}

	issues, err := r.getIssues(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return run, issues, nil
}

// getIssues 获取审查记录的全部问题，保持写入顺序
func (r *AnalysisRepository) getIssues(ctx context.Context, runID uuid.UUID) ([]model.ComplianceIssue, error) {
	query := `
		SELECT id, type, severity, source, date, employee,
			message, suggestions, shift_refs
		FROM analysis_issues
		WHERE run_id = $1
		ORDER BY ctid
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("查询合规问题失败: %w", err)
	}
	defer rows.Close()

	var issues []model.ComplianceIssue
	for rows.Next() {
		var issue model.ComplianceIssue
		var issueType, severity, source string
		var suggestionsJSON, refsJSON []byte

		if err := rows.Scan(
			&issue.ID, &issueType, &severity, &source, &issue.Date, &issue.Employee,
			&issue.Message, &suggestionsJSON, &refsJSON,
		); err != nil {
			return nil, fmt.Errorf("扫描合规问题失败: %w", err)
		}

		issue.Type = model.IssueType(issueType)
		issue.Severity = model.Severity(severity)
		issue.Source = model.Source(source)
		if len(suggestionsJSON) > 0 {
			json.Unmarshal(suggestionsJSON, &issue.Suggestions)
		}
		if len(refsJSON) > 0 {
			json.Unmarshal(refsJSON, &issue.ShiftRefs)
		}

		issues = append(issues, issue)
	}

	return issues, nil
}

// List 列出审查记录
func (r *AnalysisRepository) List(ctx context.Context, filter ListFilter) ([]*AnalysisRun, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}

	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// 计数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM analysis_runs %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计审查记录数量失败: %w", err)
	}

	// 查询
	query := fmt.Sprintf(`
		SELECT id, total_shifts, critical_issues, warnings,
			facility_capacity, duration_ms, created_at
		FROM analysis_runs %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询审查记录列表失败: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		run := &AnalysisRun{}
		if err := rows.Scan(
			&run.ID, &run.TotalShifts, &run.CriticalIssues, &run.Warnings,
			&run.FacilityCap, &run.DurationMs, &run.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描审查记录失败: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, total, nil
}
