package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campaign_studio/internal/model"
)

// ==================== 仓储接口 ====================

// AICallLogRepository AI调用日志仓储接口
type AICallLogRepository interface {
	Create(ctx context.Context, log *model.AICallLog) error

	// 统计查询
	GetUsageByCampaign(ctx context.Context, campaignID string) (*AIUsageStats, error)
	GetUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error)
	GetModelUsage(ctx context.Context, startTime, endTime time.Time) ([]ModelUsageStats, error)
}

// ==================== 统计结构 ====================

// AIUsageStats AI用量统计
type AIUsageStats struct {
	TotalCalls    int64   `json:"total_calls"`
	TextCalls     int64   `json:"text_calls"`
	ImageCalls    int64   `json:"image_calls"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
}

// ModelUsageStats 按模型统计
type ModelUsageStats struct {
	ModelName    string `json:"model_name"`
	TotalCalls   int64  `json:"total_calls"`
	SuccessCount int64  `json:"success_count"`
	FailedCount  int64  `json:"failed_count"`
}

const usageSelect = `
	COUNT(*) as total_calls,
	COALESCE(SUM(CASE WHEN call_type = 'text' THEN 1 ELSE 0 END), 0) as text_calls,
	COALESCE(SUM(CASE WHEN call_type = 'image' THEN 1 ELSE 0 END), 0) as image_calls,
	COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
	COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) as success_count,
	COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count
`

// ==================== 仓储实现 ====================

type aiCallLogRepo struct {
	db *gorm.DB
}

// NewAICallLogRepository 创建AI调用日志仓储
func NewAICallLogRepository(db *gorm.DB) AICallLogRepository {
	return &aiCallLogRepo{db: db}
}

func (r *aiCallLogRepo) Create(ctx context.Context, log *model.AICallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *aiCallLogRepo) GetUsageByCampaign(ctx context.Context, campaignID string) (*AIUsageStats, error) {
	var stats AIUsageStats

	err := r.db.WithContext(ctx).Model(&model.AICallLog{}).
		Where("campaign_id = ?", campaignID).
		Select(usageSelect).
		Scan(&stats).Error

	return &stats, err
}

func (r *aiCallLogRepo) GetUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error) {
	var stats AIUsageStats

	err := r.timeRange(ctx, startTime, endTime).Select(usageSelect).Scan(&stats).Error
	return &stats, err
}

func (r *aiCallLogRepo) GetModelUsage(ctx context.Context, startTime, endTime time.Time) ([]ModelUsageStats, error) {
	var stats []ModelUsageStats

	err := r.timeRange(ctx, startTime, endTime).
		Select(`
			model_name,
			COUNT(*) as total_calls,
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count
		`).
		Group("model_name").
		Order("total_calls DESC").
		Scan(&stats).Error

	return stats, err
}

// timeRange 零值时间表示不限制
func (r *aiCallLogRepo) timeRange(ctx context.Context, startTime, endTime time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.AICallLog{})
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at <= ?", endTime)
	}
	return query
}
