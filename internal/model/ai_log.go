package model

// AICallLog AI调用日志，每次模型调用（包括降级链中的每个候选）一条
type AICallLog struct {
	BaseModel

	// 关联
	CampaignID string `gorm:"size:36;index;comment:营销活动ID" json:"campaign_id"`

	// 调用信息
	CallType  string `gorm:"size:32;index;comment:调用类型(text/image)" json:"call_type"`
	Provider  string `gorm:"size:32;comment:模型提供方(bedrock/gemini)" json:"provider"`
	ModelName string `gorm:"size:128;comment:模型名称" json:"model_name"`

	// 性能
	DurationMs int64 `gorm:"comment:耗时(毫秒)" json:"duration_ms"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/failed)" json:"status"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息" json:"error_msg"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 调用类型常量 ====================

const (
	AICallTypeText  = "text"
	AICallTypeImage = "image"
)

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)
