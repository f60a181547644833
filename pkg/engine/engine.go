// Package engine 提供排班合规审查引擎
//
// 引擎接收一组已规范化的班次记录和机构床位数，产出按严重程度分级的
// 合规问题列表。引擎不在两次运行之间保留任何状态，所有实体在每次
// 运行中重新创建；输入对引擎只读，问题列表是唯一的输出产物。
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hegui/hegui/pkg/errors"
	"github.com/hegui/hegui/pkg/logger"
	"github.com/hegui/hegui/pkg/model"
)

// Engine 合规审查引擎
type Engine struct {
	cfg      RuleConfig
	workers  int
	ratio    *RatioAnalyzer
	coverage *CoverageAnalyzer
	overlap  *OverlapDetector
	overtime *OvertimeAnalyzer
	log      *logger.ComplianceLogger
}

// New 创建合规审查引擎
func New(cfg RuleConfig) *Engine {
	cfg = cfg.normalized()
	return &Engine{
		cfg:      cfg,
		workers:  4,
		ratio:    NewRatioAnalyzer(cfg),
		coverage: NewCoverageAnalyzer(cfg),
		overlap:  NewOverlapDetector(),
		overtime: NewOvertimeAnalyzer(cfg),
		log:      logger.NewComplianceLogger(),
	}
}

// SetWorkers 设置日级检查的并行度
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run 执行一次合规审查
//
// 各日期的配比、覆盖、冲突检查相互独立，按日期并行分发；周加班检查
// 读取同一只读输入，与日级检查并发执行。空的有效班次集显式拒绝，
// 空问题列表会与"完全合规"混淆。
func (e *Engine) Run(ctx context.Context, shifts []*model.ShiftRecord, capacity int) (*model.AnalysisResult, error) {
	if len(shifts) == 0 {
		return nil, apperrors.NoValidShifts("")
	}

	byDate := GroupByDate(shifts)
	if len(byDate) == 0 {
		return nil, apperrors.NoValidShifts("所有记录缺少日期")
	}
	dates := SortedDates(byDate)

	total := 0
	for _, bucket := range byDate {
		total += len(bucket)
	}

	runID := uuid.New().String()
	start := time.Now()
	e.log.StartRun(runID, total, len(dates))

	// 起止时间解析与覆盖模型构建需要跨日期归属（跨午夜班次溢出到次日），
	// 在并行分发前一次完成
	timedByDate := make(map[string][]timedShift, len(dates))
	qualityByDate := make(map[string][]model.ComplianceIssue, len(dates))
	for date, bucket := range byDate {
		timed, quality := splitByClock(date, bucket)
		timedByDate[date] = timed
		qualityByDate[date] = quality
	}
	covModels := e.coverage.BuildModels(timedByDate)

	results := make([][]model.ComplianceIssue, len(dates))
	jobs := make(chan int, len(dates))

	workers := e.workers
	if workers > len(dates) {
		workers = len(dates)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					date := dates[idx]
					results[idx] = e.analyzeDate(date, byDate[date], timedByDate[date], qualityByDate[date], covModels[date], capacity)
				}
			}
		}()
	}

	for i := range dates {
		jobs <- i
	}
	close(jobs)

	var overtimeIssues []model.ComplianceIssue
	overtimeDone := make(chan struct{})
	go func() {
		overtimeIssues = e.overtime.Analyze(shifts)
		close(overtimeDone)
	}()

	wg.Wait()
	<-overtimeDone

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTimeout, "合规审查被取消")
	}

	result := &model.AnalysisResult{
		TotalShifts:      total,
		ComplianceIssues: classify(results, overtimeIssues),
	}
	result.Summarize()

	e.log.RunComplete(runID, time.Since(start), result.CriticalIssues, result.Warnings)
	return result, nil
}

// analyzeDate 执行某日期的全部日级检查
// 日内顺序固定：数据质量、工时配比、时段覆盖、班次冲突
func (e *Engine) analyzeDate(date string, bucket []*model.ShiftRecord, timed []timedShift,
	quality []model.ComplianceIssue, cov *DailyCoverage, capacity int) []model.ComplianceIssue {

	issues := append([]model.ComplianceIssue{}, quality...)

	_, ratioIssues := e.ratio.AnalyzeDate(date, bucket, capacity)
	issues = append(issues, ratioIssues...)

	issues = append(issues, e.coverage.ExtractIssues(cov)...)
	issues = append(issues, e.overlap.AnalyzeDate(date, timed)...)

	return issues
}
