package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"campaign_studio/internal/middleware"
	"campaign_studio/internal/repository"
)

// UsageReport 一个统计周期内的模型调用用量
type UsageReport struct {
	Start  time.Time
	End    time.Time
	Total  *repository.AIUsageStats
	Models []repository.ModelUsageStats
}

// UsageReportTask 模型调用用量日报
// 同时清理冷却限流器中长时间未活动的条目
type UsageReportTask struct {
	logRepo repository.AICallLogRepository
	limiter *middleware.CooldownLimiter
	spec    string
	Cron    *cron.Cron

	now func() time.Time
}

func NewUsageReportTask(logRepo repository.AICallLogRepository, limiter *middleware.CooldownLimiter, spec string) *UsageReportTask {
	return &UsageReportTask{
		logRepo: logRepo,
		limiter: limiter,
		spec:    spec,
		Cron:    cron.New(cron.WithSeconds()), // 支持秒级控制
		now:     time.Now,
	}
}

// Start 启动用量日报任务
func (t *UsageReportTask) Start() error {
	// 默认每天 00:05:00 统计前一天
	_, err := t.Cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := t.Execute(ctx); err != nil {
			log.Printf("[UsageReport] 统计失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("无法启动 UsageReport: %w", err)
	}

	t.Cron.Start()
	log.Printf("UsageReport 用量日报任务已启动 (%s)", t.spec)
	return nil
}

// Stop 停止任务并等待正在执行的统计结束
func (t *UsageReportTask) Stop() {
	<-t.Cron.Stop().Done()
}

// Execute 统计前一个自然日 (UTC) 的调用用量
func (t *UsageReportTask) Execute(ctx context.Context) (*UsageReport, error) {
	end := t.now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)

	total, err := t.logRepo.GetUsage(ctx, start, end)
	if err != nil {
		return nil, err
	}
	models, err := t.logRepo.GetModelUsage(ctx, start, end)
	if err != nil {
		return nil, err
	}

	log.Printf("[UsageReport] %s 调用 %d 次 (文案 %d / 图片 %d)，成功 %d，失败 %d，平均耗时 %.0fms",
		start.Format("2006-01-02"), total.TotalCalls, total.TextCalls, total.ImageCalls,
		total.SuccessCount, total.FailedCount, total.AvgDurationMs)
	for _, m := range models {
		log.Printf("[UsageReport]   %s: %d 次 (成功 %d / 失败 %d)", m.ModelName, m.TotalCalls, m.SuccessCount, m.FailedCount)
	}

	if t.limiter != nil {
		if removed := t.limiter.Sweep(24 * time.Hour); removed > 0 {
			log.Printf("[UsageReport] 清理限流条目 %d 个", removed)
		}
	}

	return &UsageReport{Start: start, End: end, Total: total, Models: models}, nil
}
