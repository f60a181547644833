// Package advisory 提供外部辅助分析客户端
//
// 辅助分析是可选的生成式补充，用于在确定性检查之外提供自由形式的
// 排班建议。它的任何失败（超时、不可达、响应格式错误）都只记录日志
// 并丢弃，确定性审查结果始终原样返回。
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hegui/hegui/pkg/model"
)

// Config 辅助分析配置
type Config struct {
	Enabled  bool          `json:"enabled"`
	Endpoint string        `json:"endpoint"`
	APIKey   string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
}

// Client 辅助分析客户端
type Client struct {
	cfg    Config
	client *http.Client
}

// New 创建辅助分析客户端
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled 检查客户端是否配置可用
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.Endpoint != ""
}

// Timeout 返回配置的调用超时
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// Request 辅助分析请求
type Request struct {
	TotalShifts    int            `json:"total_shifts"`
	CriticalIssues int            `json:"critical_issues"`
	Warnings       int            `json:"warnings"`
	Dates          []string       `json:"dates,omitempty"`
	Issues         []IssueSummary `json:"issues"`
}

// IssueSummary 发送给辅助分析的问题摘要
type IssueSummary struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Finding 辅助分析返回的单条发现
type Finding struct {
	Type        string   `json:"type,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// adviseResponse 辅助分析响应
type adviseResponse struct {
	Findings []Finding `json:"findings"`
}

// BuildRequest 从审查结果构造请求摘要
func BuildRequest(result *model.AnalysisResult, dates []string) *Request {
	req := &Request{
		TotalShifts:    result.TotalShifts,
		CriticalIssues: result.CriticalIssues,
		Warnings:       result.Warnings,
		Dates:          dates,
	}
	for _, issue := range result.ComplianceIssues {
		req.Issues = append(req.Issues, IssueSummary{
			Type:     string(issue.Type),
			Severity: string(issue.Severity),
			Message:  issue.Message,
		})
	}
	return req
}

// Advise 请求补充发现
// 调用方通过 ctx 控制总超时；返回的发现尚未标记来源，
// 由 engine.AppendAdvisory 统一标记后合并
func (c *Client) Advise(ctx context.Context, req *Request) ([]model.ComplianceIssue, error) {
	if !c.Enabled() {
		return nil, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化辅助分析请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造辅助分析请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("辅助分析调用失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("辅助分析服务返回状态 %d", resp.StatusCode)
	}

	var parsed adviseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析辅助分析响应失败: %w", err)
	}

	issues := make([]model.ComplianceIssue, 0, len(parsed.Findings))
	for _, f := range parsed.Findings {
		if f.Message == "" {
			continue
		}
		issues = append(issues, model.ComplianceIssue{
			Type:        parseIssueType(f.Type),
			Severity:    parseSeverity(f.Severity),
			Message:     f.Message,
			Suggestions: f.Suggestions,
		})
	}
	return issues, nil
}

// parseIssueType 解析发现类型
// 辅助分析主要补充资质与执业方面的建议，无法识别的类型归入
// license_requirement（该类型不由任何确定性分析器产生）
func parseIssueType(token string) model.IssueType {
	switch model.IssueType(token) {
	case model.IssueStaffingRatio, model.IssueOvertimeViolation, model.IssueCoverageGap,
		model.IssueDoubleBooking, model.IssueLicenseRequirement, model.IssueDataQuality:
		return model.IssueType(token)
	default:
		return model.IssueLicenseRequirement
	}
}

// parseSeverity 解析严重程度，留空交由合并阶段默认为提示级
func parseSeverity(token string) model.Severity {
	switch model.Severity(token) {
	case model.SeverityCritical, model.SeverityWarning, model.SeverityInfo:
		return model.Severity(token)
	default:
		return ""
	}
}
