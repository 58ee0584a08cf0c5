package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ==================== 配置结构 ====================

// Config 应用全局配置
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Storage  StorageConfig
	Text     TextConfig
	Image    ImageConfig
	Campaign CampaignConfig
	Task     TaskConfig
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port             string
	LogLevel         string
	GenerateCooldown time.Duration // 同一客户端两次生成请求的最小间隔，0 表示不限制
	TrustedProxies   []string      // 允许设置 X-Forwarded-For 的代理，为空时只信任直连地址
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN   string
	Debug bool
}

// AWSConfig Bedrock 与 S3 共用的凭证
type AWSConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Endpoint  string // S3 兼容存储的自定义端点 (MinIO 等)
	CDNDomain string
	BasePath  string
	LocalDir  string
	LocalURL  string
}

// TextConfig 文案模型配置
type TextConfig struct {
	Provider     string // "bedrock" | "gemini"
	Model        string
	GeminiAPIKey string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	CallTimeout  time.Duration
}

// ImageConfig 图片模型配置
type ImageConfig struct {
	CallTimeout time.Duration
}

// CampaignConfig 营销文案相关的可替换常量
type CampaignConfig struct {
	TargetMarket        string
	FallbackHashtags    []string
	FallbackImagePrompt string
	PlaceholderImageURL string
	PlaceholderVideoURL string
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	UsageReportCron string // 为空时不启动用量报表任务
}

// ==================== 默认值 ====================

const (
	DefaultTextModel           = "meta.llama3-8b-instruct-v1:0"
	DefaultGeminiTextModel     = "gemini-2.0-flash"
	DefaultFallbackImagePrompt = "Professional product showcase with modern Malaysian aesthetic"
	DefaultPlaceholderImageURL = "https://picsum.photos/512/512"
	DefaultPlaceholderVideoURL = "https://via.placeholder.com/400x400/764ba2/ffffff?text=Generated+Video"
)

// DefaultFallbackHashtags 模型输出无法解析时使用的标签
var DefaultFallbackHashtags = []string{"MalaysianMade", "LocalBrand", "QualityFirst", "Innovation", "SmallBusiness"}

// ==================== 加载 ====================

// Load 从 .env 与环境变量加载配置
func Load() (*Config, error) {
	// .env 不存在时只打印警告
	if err := godotenv.Load(); err != nil {
		log.Printf("警告: 未加载 .env 文件: %v", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", "8080"),
			LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
			GenerateCooldown: getEnvDuration("GENERATE_COOLDOWN", 0),
			TrustedProxies:   getEnvList("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			DSN:   getEnv("DATABASE_DSN", "host=localhost user=campaign password=campaign dbname=campaign_studio port=5432 sslmode=disable"),
			Debug: getEnvBool("DATABASE_DEBUG", false),
		},
		AWS: AWSConfig{
			Region:    getEnv("AWS_REGION", "us-east-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Storage: StorageConfig{
			Provider:  getEnv("STORAGE_PROVIDER", "s3"),
			Bucket:    getEnv("AWS_BUCKET", getEnv("AWS_S3_BUCKET", "")),
			Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
			CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
			BasePath:  getEnv("STORAGE_BASE_PATH", ""),
			LocalDir:  getEnv("LOCAL_STORAGE_DIR", "./uploads"),
			LocalURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/uploads"),
		},
		Text: TextConfig{
			Provider:     strings.ToLower(getEnv("TEXT_PROVIDER", "bedrock")),
			Model:        getEnv("TEXT_MODEL", ""),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			MaxTokens:    getEnvInt("TEXT_MAX_TOKENS", 300),
			Temperature:  getEnvFloat("TEXT_TEMPERATURE", 0.7),
			TopP:         getEnvFloat("TEXT_TOP_P", 0.9),
			CallTimeout:  getEnvDuration("TEXT_CALL_TIMEOUT", 60*time.Second),
		},
		Image: ImageConfig{
			CallTimeout: getEnvDuration("IMAGE_CALL_TIMEOUT", 90*time.Second),
		},
		Campaign: CampaignConfig{
			TargetMarket:        getEnv("TARGET_MARKET", "Malaysia"),
			FallbackHashtags:    getEnvList("FALLBACK_HASHTAGS", DefaultFallbackHashtags),
			FallbackImagePrompt: getEnv("FALLBACK_IMAGE_PROMPT", DefaultFallbackImagePrompt),
			PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", DefaultPlaceholderImageURL),
			PlaceholderVideoURL: getEnv("PLACEHOLDER_VIDEO_URL", DefaultPlaceholderVideoURL),
		},
		Task: TaskConfig{
			UsageReportCron: getEnv("USAGE_REPORT_CRON", "0 5 0 * * *"),
		},
	}

	if cfg.Text.Model == "" {
		cfg.Text.Model = DefaultTextModel
		if cfg.Text.Provider == "gemini" {
			cfg.Text.Model = DefaultGeminiTextModel
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Text.Provider {
	case "bedrock":
	case "gemini":
		if c.Text.GeminiAPIKey == "" {
			return errors.New("TEXT_PROVIDER=gemini 时必须设置 GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("不支持的 TEXT_PROVIDER: %s", c.Text.Provider)
	}

	switch c.Storage.Provider {
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("STORAGE_PROVIDER=s3 时必须设置 AWS_BUCKET")
		}
	case "local":
	default:
		return fmt.Errorf("不支持的 STORAGE_PROVIDER: %s", c.Storage.Provider)
	}

	if c.Text.CallTimeout <= 0 || c.Image.CallTimeout <= 0 {
		return errors.New("TEXT_CALL_TIMEOUT / IMAGE_CALL_TIMEOUT 必须为正数")
	}
	if len(c.Campaign.FallbackHashtags) == 0 {
		return errors.New("FALLBACK_HASHTAGS 不能为空")
	}
	return nil
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration 支持 "90s" 这类写法，纯数字按秒处理
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList 逗号分隔的列表
func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
