package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ==================== 候选模型 ====================

// ImageCandidate 降级链中的一个候选：模型ID + 请求构造 + 响应提取
type ImageCandidate struct {
	ModelID      string
	BuildRequest func(prompt string) ([]byte, error)
	ExtractImage func(body []byte) ([]byte, error)
}

// ImageResult 图片生成结果
type ImageResult struct {
	ImageBytes []byte
	ModelID    string
}

// AttemptObserver 每次候选调用结束后回调，err 为 nil 表示成功
type AttemptObserver func(ctx context.Context, modelID string, elapsed time.Duration, err error)

const (
	ModelNovaCanvas      = "amazon.nova-canvas-v1:0"
	ModelTitanImageV1    = "amazon.titan-image-generator-v1:0"
	ModelTitanImageG1    = "amazon.titan-image-generator-g1:latest"
	ModelStableDiffusion = "stability.stable-diffusion-xl-base-v1-0"
)

// DefaultImageCandidates 默认顺序：Nova Canvas 为主，Titan 两个版本与 SDXL 依次降级
func DefaultImageCandidates() []ImageCandidate {
	return []ImageCandidate{
		{
			ModelID: ModelNovaCanvas,
			BuildRequest: func(prompt string) ([]byte, error) {
				seed := rand.Int64N(1000000)
				return CanvasRequest(prompt, "blurry, low quality, distorted", &seed)
			},
			ExtractImage: ExtractImagePayload,
		},
		{
			ModelID:      ModelTitanImageV1,
			BuildRequest: func(prompt string) ([]byte, error) { return CanvasRequest(prompt, "", nil) },
			ExtractImage: ExtractImagePayload,
		},
		{
			ModelID:      ModelTitanImageG1,
			BuildRequest: func(prompt string) ([]byte, error) { return CanvasRequest(prompt, "", nil) },
			ExtractImage: ExtractImagePayload,
		},
		{
			ModelID:      ModelStableDiffusion,
			BuildRequest: DiffusionRequest,
			ExtractImage: ExtractImagePayload,
		},
	}
}

// ==================== 请求体 ====================

type canvasTextParams struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
}

type canvasGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           *int64  `json:"seed,omitempty"`
}

type canvasBody struct {
	TaskType              string                 `json:"taskType"`
	TextToImageParams     canvasTextParams       `json:"textToImageParams"`
	ImageGenerationConfig canvasGenerationConfig `json:"imageGenerationConfig"`
}

// CanvasRequest Nova Canvas / Titan 格式
func CanvasRequest(prompt, negativeText string, seed *int64) ([]byte, error) {
	return json.Marshal(canvasBody{
		TaskType: "TEXT_IMAGE",
		TextToImageParams: canvasTextParams{
			Text:         prompt,
			NegativeText: negativeText,
		},
		ImageGenerationConfig: canvasGenerationConfig{
			NumberOfImages: 1,
			Height:         512,
			Width:          512,
			CfgScale:       8.0,
			Seed:           seed,
		},
	})
}

type diffusionPrompt struct {
	Text string `json:"text"`
}

type diffusionBody struct {
	TextPrompts []diffusionPrompt `json:"text_prompts"`
	CfgScale    int               `json:"cfg_scale"`
	Seed        int               `json:"seed"`
	Steps       int               `json:"steps"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
}

// DiffusionRequest Stable Diffusion 格式
func DiffusionRequest(prompt string) ([]byte, error) {
	return json.Marshal(diffusionBody{
		TextPrompts: []diffusionPrompt{{Text: prompt}},
		CfgScale:    10,
		Seed:        0,
		Steps:       50,
		Width:       512,
		Height:      512,
	})
}

// ==================== 响应解析 ====================

// ExtractImagePayload 依次检查 images[0]、artifacts[0].base64、image
func ExtractImagePayload(body []byte) ([]byte, error) {
	var envelope struct {
		Images    []string `json:"images"`
		Artifacts []struct {
			Base64 string `json:"base64"`
		} `json:"artifacts"`
		Image string `json:"image"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	var encoded string
	switch {
	case len(envelope.Images) > 0 && envelope.Images[0] != "":
		encoded = envelope.Images[0]
	case len(envelope.Artifacts) > 0 && envelope.Artifacts[0].Base64 != "":
		encoded = envelope.Artifacts[0].Base64
	case envelope.Image != "":
		encoded = envelope.Image
	case envelope.Error != "":
		return nil, fmt.Errorf("模型返回错误: %s", envelope.Error)
	default:
		return nil, errors.New("响应中未找到图片数据")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("Base64 解码失败: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("图片数据为空")
	}
	return data, nil
}

// ==================== 降级链 ====================

// ImageChain 按顺序逐个尝试候选模型，每个候选只调用一次，首个成功即返回
type ImageChain struct {
	invoker    ModelInvoker
	candidates []ImageCandidate
	timeout    time.Duration
	observer   AttemptObserver
	logger     *slog.Logger
}

// NewImageChain 创建降级链，candidates 为空时使用默认候选
func NewImageChain(invoker ModelInvoker, candidates []ImageCandidate, timeout time.Duration, logger *slog.Logger) *ImageChain {
	if len(candidates) == 0 {
		candidates = DefaultImageCandidates()
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageChain{
		invoker:    invoker,
		candidates: candidates,
		timeout:    timeout,
		logger:     logger,
	}
}

// SetObserver 设置调用回调 (用于记录调用日志)
func (c *ImageChain) SetObserver(observer AttemptObserver) {
	c.observer = observer
}

// Candidates 当前候选模型ID，按尝试顺序
func (c *ImageChain) Candidates() []string {
	ids := make([]string, 0, len(c.candidates))
	for _, cand := range c.candidates {
		ids = append(ids, cand.ModelID)
	}
	return ids
}

// Generate 生成图片，全部失败时返回的错误满足 errors.Is(err, ErrImageChainExhausted)
func (c *ImageChain) Generate(ctx context.Context, prompt string) (*ImageResult, error) {
	var errs []error

	for _, cand := range c.candidates {
		// 请求已取消时后续候选也不可能成功
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		start := time.Now()
		data, err := c.attempt(ctx, cand, prompt)
		elapsed := time.Since(start)
		if c.observer != nil {
			c.observer(ctx, cand.ModelID, elapsed, err)
		}

		if err == nil {
			c.logger.Info("image_generated", "model", cand.ModelID, "bytes", len(data), "duration_ms", elapsed.Milliseconds())
			return &ImageResult{ImageBytes: data, ModelID: cand.ModelID}, nil
		}

		c.logger.Warn("image_model_failed", "model", cand.ModelID, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", cand.ModelID, err))
	}

	return nil, fmt.Errorf("%w: %w", ErrImageChainExhausted, errors.Join(errs...))
}

func (c *ImageChain) attempt(ctx context.Context, cand ImageCandidate, prompt string) ([]byte, error) {
	body, err := cand.BuildRequest(prompt)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.invoker.InvokeModel(callCtx, cand.ModelID, body)
	if err != nil {
		return nil, err
	}

	extract := cand.ExtractImage
	if extract == nil {
		extract = ExtractImagePayload
	}
	return extract(resp)
}
