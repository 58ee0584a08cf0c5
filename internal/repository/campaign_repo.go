package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campaign_studio/internal/model"
)

var (
	ErrCampaignExists   = errors.New("campaign already exists")
	ErrCampaignNotFound = errors.New("campaign not found")
)

// ==================== 仓储接口 ====================

// CampaignRepository 营销活动仓储，只提供追加与读取
type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]model.Campaign, int64, error)
}

// CampaignFilter 列表查询条件，Page 为 0 时返回全部
type CampaignFilter struct {
	Page     int
	PageSize int
	Platform string
	Language string
}

// ==================== 仓储实现 ====================

type campaignRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewCampaignRepository 创建营销活动仓储
func NewCampaignRepository(db *gorm.DB, logger *slog.Logger) CampaignRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &campaignRepo{db: db, logger: logger}
}

func (r *campaignRepo) Create(ctx context.Context, campaign *model.Campaign) error {
	// 主键冲突时不覆盖，已存在的记录保持原样
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(campaign)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrCampaignExists
		}
		r.logger.Error("campaign_repo_create_failed", "campaign_id", campaign.ID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignExists
	}
	return nil
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepo) List(ctx context.Context, filter CampaignFilter) ([]model.Campaign, int64, error) {
	var list []model.Campaign
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Campaign{})
	if filter.Platform != "" {
		query = query.Where("platform_format = ?", filter.Platform)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id ASC")
	if filter.Page > 0 {
		if filter.PageSize <= 0 {
			filter.PageSize = 20
		}
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// isUniqueViolation 兼容开启 TranslateError 与直接返回 PgError 两种情况
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
