package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"campaign_studio/internal/config"
	"campaign_studio/internal/model"
	"campaign_studio/internal/repository"
)

// ==================== 外部服务依赖 ====================

// GenerativeAI 文案与图片生成
type GenerativeAI interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*ImageResult, error)
}

// ObjectStorage 对象存储
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error)
	UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error)
}

// ==================== 请求与结果 ====================

const (
	DefaultContentStyle   = "professional"
	DefaultPlatformFormat = "instagram-post"
	DefaultToneOfVoice    = "casual"
	DefaultMediaType      = model.MediaTypeImage
	DefaultLanguage       = "english"

	LanguageBilingual = "bilingual"
	LanguageMalay     = "malay"
)

const (
	generatedImageDir = "generated-images"
	sourceImageDir    = "source-images"
)

// UploadedImage 表单上传的产品图
type UploadedImage struct {
	Data        []byte
	Filename    string
	ContentType string
}

// GenerationRequest 营销活动生成参数
type GenerationRequest struct {
	Description    string
	ContentStyle   string
	PlatformFormat string
	ToneOfVoice    string
	MediaType      string
	Language       string

	SourceImage    *UploadedImage // 可选
	SourceImageURL string         // 可选，已有的产品图地址
}

// WithDefaults 返回补齐默认值后的副本
func (r GenerationRequest) WithDefaults() GenerationRequest {
	r.Description = strings.TrimSpace(r.Description)
	if r.ContentStyle == "" {
		r.ContentStyle = DefaultContentStyle
	}
	if r.PlatformFormat == "" {
		r.PlatformFormat = DefaultPlatformFormat
	}
	if r.ToneOfVoice == "" {
		r.ToneOfVoice = DefaultToneOfVoice
	}
	if r.MediaType == "" {
		r.MediaType = DefaultMediaType
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	r.MediaType = strings.ToLower(r.MediaType)
	r.Language = strings.ToLower(r.Language)
	return r
}

// TextContent 只生成文案的结果
type TextContent struct {
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt"`
	Keywords    []string `json:"keywords"`
	Type        string   `json:"type"`
}

// ImageContent 只生成图片的结果，Fallback 为 true 时 ImageURL 为占位图
type ImageContent struct {
	ImageURL string `json:"imageUrl"`
	Type     string `json:"type"`
	ModelID  string `json:"modelId,omitempty"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// CampaignConfig 营销活动组装配置
type CampaignConfig struct {
	TargetMarket        string
	PlaceholderImageURL string
	PlaceholderVideoURL string
}

// ==================== 服务实现 ====================

// CampaignService 营销活动组装
type CampaignService struct {
	ai         GenerativeAI
	normalizer *Normalizer
	storage    ObjectStorage
	repo       repository.CampaignRepository
	usage      repository.AICallLogRepository
	cfg        CampaignConfig
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewCampaignService 创建营销活动服务，storage 可为 nil (生成的图片退化为占位图)
func NewCampaignService(
	ai GenerativeAI,
	normalizer *Normalizer,
	storage ObjectStorage,
	repo repository.CampaignRepository,
	usage repository.AICallLogRepository,
	cfg CampaignConfig,
	logger *slog.Logger,
) *CampaignService {
	if normalizer == nil {
		normalizer = NewNormalizer(FallbackContent{})
	}
	if cfg.TargetMarket == "" {
		cfg.TargetMarket = "Malaysia"
	}
	if cfg.PlaceholderImageURL == "" {
		cfg.PlaceholderImageURL = config.DefaultPlaceholderImageURL
	}
	if cfg.PlaceholderVideoURL == "" {
		cfg.PlaceholderVideoURL = config.DefaultPlaceholderVideoURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CampaignService{
		ai:         ai,
		normalizer: normalizer,
		storage:    storage,
		repo:       repo,
		usage:      usage,
		cfg:        cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// ==================== 生成营销活动 ====================

// GenerateCampaign 生成营销活动预览 (不落库)
// 文案调用失败直接返回错误；图片失败退化为占位图。
func (s *CampaignService) GenerateCampaign(ctx context.Context, req GenerationRequest) (*model.Campaign, error) {
	req = req.WithDefaults()
	if req.Description == "" {
		return nil, ErrEmptyDescription
	}

	id := s.newID()
	ctx = WithCampaignID(ctx, id)
	logger := s.logger.With("campaign_id", id)

	// 1. 文案
	completion, err := s.ai.GenerateText(ctx, buildCampaignPrompt(req, s.cfg.TargetMarket))
	if err != nil {
		return nil, err
	}
	text := s.normalize(completion, req.Description)
	logger.Debug("campaign_text_normalized", "hashtags", len(text.Hashtags))

	campaign := &model.Campaign{
		ID:             id,
		Description:    req.Description,
		ContentStyle:   req.ContentStyle,
		PlatformFormat: req.PlatformFormat,
		ToneOfVoice:    req.ToneOfVoice,
		MediaType:      req.MediaType,
		Language:       req.Language,
		Caption:        text.Caption,
		Hashtags:       text.Hashtags,
		ImagePrompt:    text.ImagePrompt,
		Keywords:       ExtractKeywords(req.Description),
		CreatedAt:      s.now(),
	}

	// 2. 产品原图
	campaign.SourceImageURL = s.storeSourceImage(ctx, logger, req)

	// 3. 图片
	if campaign.WantsImage() {
		imagePrompt := text.ImagePrompt
		if strings.TrimSpace(imagePrompt) == "" {
			imagePrompt = req.Description
		}
		content := s.generateImage(ctx, imagePrompt)
		campaign.ImageURL = content.ImageURL
		campaign.ImageFallback = content.Fallback
		if content.Fallback {
			logger.Warn("campaign_image_fallback", "error", content.Error)
		}
	} else {
		campaign.ImageURL = campaign.SourceImageURL
		if campaign.ImageURL == "" {
			campaign.ImageURL = s.cfg.PlaceholderImageURL
		}
	}

	// 4. 视频暂不生成
	if campaign.WantsVideo() {
		campaign.VideoURL = s.cfg.PlaceholderVideoURL
	}

	logger.Info("campaign_generated", "media_type", campaign.MediaType, "image_fallback", campaign.ImageFallback)
	return campaign, nil
}

// GenerateTextContent 只生成文案
func (s *CampaignService) GenerateTextContent(ctx context.Context, description string) (*TextContent, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	completion, err := s.ai.GenerateText(ctx, buildTextPrompt(description))
	if err != nil {
		return nil, err
	}
	text := s.normalize(completion, description)

	return &TextContent{
		Caption:     text.Caption,
		Hashtags:    text.Hashtags,
		ImagePrompt: text.ImagePrompt,
		Keywords:    ExtractKeywords(description),
		Type:        "text",
	}, nil
}

// GenerateImageContent 只生成图片，生成或上传失败时返回占位图，只有提示词为空时报错
func (s *CampaignService) GenerateImageContent(ctx context.Context, imagePrompt string) (*ImageContent, error) {
	imagePrompt = strings.TrimSpace(imagePrompt)
	if imagePrompt == "" {
		return nil, ErrEmptyDescription
	}
	return s.generateImage(ctx, imagePrompt), nil
}

func (s *CampaignService) generateImage(ctx context.Context, imagePrompt string) *ImageContent {
	result, err := s.ai.GenerateImage(ctx, imagePrompt)
	if err != nil {
		return s.placeholderImage(err)
	}

	if s.storage == nil {
		return s.placeholderImage(ErrStorageNotConfigured)
	}
	url, err := s.storage.Upload(ctx, result.ImageBytes, path.Join(generatedImageDir, "image.png"), "image/png")
	if err != nil {
		return s.placeholderImage(fmt.Errorf("上传生成图片失败: %w", err))
	}

	return &ImageContent{
		ImageURL: url,
		Type:     "image",
		ModelID:  result.ModelID,
	}
}

func (s *CampaignService) placeholderImage(err error) *ImageContent {
	return &ImageContent{
		ImageURL: s.cfg.PlaceholderImageURL,
		Type:     "image",
		Fallback: true,
		Error:    err.Error(),
	}
}

// storeSourceImage 上传产品原图，失败只打日志
func (s *CampaignService) storeSourceImage(ctx context.Context, logger *slog.Logger, req GenerationRequest) string {
	switch {
	case req.SourceImage != nil && len(req.SourceImage.Data) > 0:
		if s.storage == nil {
			logger.Warn("source_image_skipped", "error", ErrStorageNotConfigured)
			return ""
		}
		img := req.SourceImage
		filename := path.Base(img.Filename)
		if path.Ext(filename) == "" || filename == "." || filename == "/" {
			filename = "source" + extensionFor(img.ContentType)
		}
		url, err := s.storage.Upload(ctx, img.Data, path.Join(sourceImageDir, filename), img.ContentType)
		if err != nil {
			logger.Warn("source_image_upload_failed", "error", err)
			return ""
		}
		return url

	case req.SourceImageURL != "":
		if s.storage == nil {
			return req.SourceImageURL
		}
		url, err := s.storage.UploadFromURL(ctx, req.SourceImageURL, path.Join(sourceImageDir, "source.jpg"))
		if err != nil {
			// 转存失败时保留原地址
			logger.Warn("source_image_transfer_failed", "url", req.SourceImageURL, "error", err)
			return req.SourceImageURL
		}
		return url
	}
	return ""
}

// normalize 规整模型输出，文案为空时用降级文案补齐
func (s *CampaignService) normalize(completion, description string) *TextResult {
	text := s.normalizer.Normalize(completion)
	if strings.TrimSpace(text.Caption) == "" {
		source := completion
		if strings.TrimSpace(source) == "" {
			source = description
		}
		text.Caption = s.normalizer.Fallback(source).Caption
	}
	if text.Hashtags == nil {
		text.Hashtags = []string{}
	}
	return text
}

// ==================== 保存与查询 ====================

// SaveCampaign 追加保存营销活动，ID 与创建时间只在缺失时分配
func (s *CampaignService) SaveCampaign(ctx context.Context, campaign *model.Campaign) (*model.Campaign, error) {
	if campaign == nil || strings.TrimSpace(campaign.Description) == "" {
		return nil, ErrEmptyDescription
	}
	if strings.TrimSpace(campaign.Caption) == "" {
		return nil, ErrEmptyCaption
	}

	if campaign.ID == "" {
		campaign.ID = s.newID()
	}
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = s.now()
	}
	if campaign.ImageURL == "" {
		campaign.ImageURL = s.cfg.PlaceholderImageURL
	}
	if campaign.MediaType == "" {
		campaign.MediaType = DefaultMediaType
	}
	if campaign.Hashtags == nil {
		campaign.Hashtags = []string{}
	}
	if campaign.Keywords == nil {
		campaign.Keywords = ExtractKeywords(campaign.Description)
	}

	// 持久化错误原样返回
	if err := s.repo.Create(ctx, campaign); err != nil {
		if !errors.Is(err, ErrCampaignExists) {
			s.logger.Error("campaign_save_failed", "campaign_id", campaign.ID, "error", err)
		}
		return nil, err
	}

	s.logger.Info("campaign_saved", "campaign_id", campaign.ID)
	return campaign, nil
}

// ListCampaigns 按创建时间倒序列出，filter 为零值时返回全部
func (s *CampaignService) ListCampaigns(ctx context.Context, filter repository.CampaignFilter) ([]model.Campaign, int64, error) {
	return s.repo.List(ctx, filter)
}

// GetCampaign 获取单个营销活动
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

// GetCampaignUsage 统计营销活动生成过程中的模型调用
// 预览阶段的调用也按同一 ID 记录，保存后即可查询。
func (s *CampaignService) GetCampaignUsage(ctx context.Context, id string) (*repository.AIUsageStats, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if s.usage == nil {
		return &repository.AIUsageStats{}, nil
	}
	return s.usage.GetUsageByCampaign(ctx, id)
}
