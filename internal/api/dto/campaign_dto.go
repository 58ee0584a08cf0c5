package dto

import (
	"time"

	"campaign_studio/internal/model"
)

// Request DTO (前端传进来的数据)

// GenerateCampaignReq 生成营销活动，multipart 表单
type GenerateCampaignReq struct {
	Description    string `form:"description" json:"description" binding:"required"`
	ContentStyle   string `form:"contentStyle" json:"contentStyle"`
	PlatformFormat string `form:"platformFormat" json:"platformFormat"`
	ToneOfVoice    string `form:"toneOfVoice" json:"toneOfVoice"`
	MediaType      string `form:"mediaType" json:"mediaType" binding:"omitempty,oneof=image video both"`
	Language       string `form:"language" json:"language"`
	ImageURL       string `form:"imageUrl" json:"imageUrl" binding:"omitempty,url"` // 已有产品图地址
}

// GenerateTextReq 只生成文案
type GenerateTextReq struct {
	Description string `json:"description" binding:"required"`
}

// GenerateImageReq 只生成图片，imagePrompt 为空时使用 description
type GenerateImageReq struct {
	ImagePrompt string `json:"imagePrompt"`
	Description string `json:"description"`
}

// Prompt 实际使用的图片提示词
func (r GenerateImageReq) Prompt() string {
	if r.ImagePrompt != "" {
		return r.ImagePrompt
	}
	return r.Description
}

// SaveCampaignReq 保存营销活动 (通常为 /generate 返回的预览)
type SaveCampaignReq struct {
	ID             string    `json:"id"`
	Description    string    `json:"description" binding:"required"`
	ContentStyle   string    `json:"contentStyle"`
	PlatformFormat string    `json:"platformFormat"`
	ToneOfVoice    string    `json:"toneOfVoice"`
	MediaType      string    `json:"mediaType" binding:"omitempty,oneof=image video both"`
	Language       string    `json:"language"`
	Caption        string    `json:"caption" binding:"required"`
	Hashtags       []string  `json:"hashtags"`
	Keywords       []string  `json:"keywords"`
	ImagePrompt    string    `json:"imagePrompt"`
	ImageURL       string    `json:"imageUrl"`
	SourceImageURL string    `json:"sourceImageUrl"`
	VideoURL       string    `json:"videoUrl"`
	ImageFallback  bool      `json:"imageFallback"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToModel 转换为持久化模型
func (r SaveCampaignReq) ToModel() *model.Campaign {
	return &model.Campaign{
		ID:             r.ID,
		Description:    r.Description,
		ContentStyle:   r.ContentStyle,
		PlatformFormat: r.PlatformFormat,
		ToneOfVoice:    r.ToneOfVoice,
		MediaType:      r.MediaType,
		Language:       r.Language,
		Caption:        r.Caption,
		Hashtags:       r.Hashtags,
		Keywords:       r.Keywords,
		ImagePrompt:    r.ImagePrompt,
		ImageURL:       r.ImageURL,
		SourceImageURL: r.SourceImageURL,
		VideoURL:       r.VideoURL,
		ImageFallback:  r.ImageFallback,
		CreatedAt:      r.CreatedAt,
	}
}

// Response DTO (返回给前端的数据)

// CampaignListResp 列表返回结构
type CampaignListResp struct {
	Data  []model.Campaign `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
}

// ErrorResp 错误返回
type ErrorResp struct {
	Error string `json:"error"`
}
