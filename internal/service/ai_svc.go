package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"campaign_studio/internal/model"
	"campaign_studio/internal/repository"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	TextModel    string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	TextTimeout  time.Duration
	ImageTimeout time.Duration
}

func (c *AIConfig) applyDefaults() {
	if c.TextModel == "" {
		c.TextModel = "meta.llama3-8b-instruct-v1:0"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 300
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.TopP == 0 {
		c.TopP = 0.9
	}
	if c.TextTimeout <= 0 {
		c.TextTimeout = 60 * time.Second
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = 90 * time.Second
	}
}

// ==================== 文案模型 ====================

// TextGenerator 文案补全模型
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// BedrockTextGenerator Llama 3 on Bedrock
type BedrockTextGenerator struct {
	invoker ModelInvoker
	cfg     AIConfig
}

// NewBedrockTextGenerator 创建 Bedrock 文案模型
func NewBedrockTextGenerator(invoker ModelInvoker, cfg AIConfig) *BedrockTextGenerator {
	cfg.applyDefaults()
	return &BedrockTextGenerator{invoker: invoker, cfg: cfg}
}

func (g *BedrockTextGenerator) Provider() string { return "bedrock" }
func (g *BedrockTextGenerator) Model() string    { return g.cfg.TextModel }

func (g *BedrockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_gen_len": g.cfg.MaxTokens,
		"temperature": g.cfg.Temperature,
		"top_p":       g.cfg.TopP,
	})
	if err != nil {
		return "", err
	}

	resp, err := g.invoker.InvokeModel(ctx, g.cfg.TextModel, body)
	if err != nil {
		return "", err
	}

	var out struct {
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if out.Generation == "" {
		return "", ErrNoGeneration
	}
	return out.Generation, nil
}

// GeminiTextGenerator Gemini API 文案模型
type GeminiTextGenerator struct {
	client *genai.Client
	cfg    AIConfig
}

// NewGeminiTextGenerator 创建 Gemini 文案模型
func NewGeminiTextGenerator(ctx context.Context, apiKey string, cfg AIConfig) (*GeminiTextGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.0-flash"
	}
	cfg.applyDefaults()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	return &GeminiTextGenerator{client: client, cfg: cfg}, nil
}

func (g *GeminiTextGenerator) Provider() string { return "gemini" }
func (g *GeminiTextGenerator) Model() string    { return g.cfg.TextModel }

func (g *GeminiTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(g.cfg.Temperature)
	topP := float32(g.cfg.TopP)

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.TextModel, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.cfg.MaxTokens),
		Temperature:     &temperature,
		TopP:            &topP,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API 请求失败: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoGeneration
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoGeneration
	}
	return sb.String(), nil
}

// ==================== 服务 ====================

// campaignIDKey 调用日志关联的营销活动ID
type campaignIDKey struct{}

// WithCampaignID 把营销活动ID放入 context，供调用日志使用
func WithCampaignID(ctx context.Context, campaignID string) context.Context {
	return context.WithValue(ctx, campaignIDKey{}, campaignID)
}

func campaignIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(campaignIDKey{}).(string)
	return id
}

// AIService 文案与图片生成，负责超时控制与调用日志
type AIService struct {
	text        TextGenerator
	images      *ImageChain
	textTimeout time.Duration
	callLogRepo repository.AICallLogRepository
	logger      *slog.Logger
}

// NewAIService 创建 AI 服务
func NewAIService(cfg AIConfig, text TextGenerator, images *ImageChain, callLogRepo repository.AICallLogRepository, logger *slog.Logger) *AIService {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &AIService{
		text:        text,
		images:      images,
		textTimeout: cfg.TextTimeout,
		callLogRepo: callLogRepo,
		logger:      logger,
	}
	if images != nil {
		images.SetObserver(func(ctx context.Context, modelID string, elapsed time.Duration, err error) {
			s.recordCall(ctx, model.AICallTypeImage, "bedrock", modelID, elapsed, err)
		})
	}
	return s
}

// GenerateText 返回模型原始补全文本，调用失败直接返回错误
func (s *AIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.logger.Debug("text_generation_started", "provider", s.text.Provider(), "prompt_preview", truncateRunes(prompt, 100))

	callCtx, cancel := context.WithTimeout(ctx, s.textTimeout)
	defer cancel()

	start := time.Now()
	completion, err := s.text.Generate(callCtx, prompt)
	s.recordCall(ctx, model.AICallTypeText, s.text.Provider(), s.text.Model(), time.Since(start), err)
	if err != nil {
		s.logger.Warn("text_generation_failed", "provider", s.text.Provider(), "error", err)
		return "", err
	}

	s.logger.Debug("text_generation_finished", "chars", len(completion))
	return completion, nil
}

// GenerateImage 走降级链生成图片
func (s *AIService) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: 未配置图片模型", ErrImageChainExhausted)
	}
	return s.images.Generate(ctx, prompt)
}

// recordCall 写调用日志，失败只打印
func (s *AIService) recordCall(ctx context.Context, callType, provider, modelName string, elapsed time.Duration, callErr error) {
	if s.callLogRepo == nil {
		return
	}

	entry := &model.AICallLog{
		CampaignID: campaignIDFrom(ctx),
		CallType:   callType,
		Provider:   provider,
		ModelName:  modelName,
		DurationMs: elapsed.Milliseconds(),
		Status:     model.AICallStatusSuccess,
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMsg = truncateRunes(callErr.Error(), 1024)
	}

	// 请求可能已被取消，日志仍然要落库
	if err := s.callLogRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("ai_call_log_failed", "model", modelName, "error", err)
	}
}
