package model

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign 营销活动，只追加不修改
type Campaign struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 生成参数
	Description    string `gorm:"type:text;not null" json:"description"`
	ContentStyle   string `gorm:"size:64" json:"contentStyle"`
	PlatformFormat string `gorm:"size:64" json:"platformFormat"`
	ToneOfVoice    string `gorm:"size:64" json:"toneOfVoice"`
	MediaType      string `gorm:"size:16" json:"mediaType"`
	Language       string `gorm:"size:32" json:"language"`

	// 生成结果
	Caption     string                      `gorm:"type:text;not null" json:"caption"`
	Hashtags    datatypes.JSONSlice[string] `json:"hashtags"`
	Keywords    datatypes.JSONSlice[string] `json:"keywords"`
	ImagePrompt string                      `gorm:"type:text" json:"imagePrompt"`

	// 媒体
	ImageURL       string `gorm:"size:1024;not null" json:"imageUrl"`
	SourceImageURL string `gorm:"size:1024" json:"sourceImageUrl,omitempty"`
	VideoURL       string `gorm:"size:1024" json:"videoUrl,omitempty"`
	ImageFallback  bool   `gorm:"default:false" json:"imageFallback"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// ==================== 媒体类型常量 ====================

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeBoth  = "both"
)

// WantsImage 是否需要生成图片
func (c *Campaign) WantsImage() bool {
	return c.MediaType == MediaTypeImage || c.MediaType == MediaTypeBoth
}

// WantsVideo 是否需要视频
func (c *Campaign) WantsVideo() bool {
	return c.MediaType == MediaTypeVideo || c.MediaType == MediaTypeBoth
}
