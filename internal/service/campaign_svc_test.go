package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign_studio/internal/model"
	"campaign_studio/internal/repository"
)

const validCompletion = `Sure! {"caption":"Stay cool all day","hashtags":["Hydrate","EcoLife"],"imagePrompt":"steel bottle on a beach"}`

type campaignFixture struct {
	svc     *CampaignService
	text    *mockTextGenerator
	invoker *mockInvoker
	storage *mockStorage
	repo    repository.CampaignRepository
}

func newCampaignFixture(t *testing.T, completion string) *campaignFixture {
	db := setupTestDB(t)
	text := &mockTextGenerator{completion: completion}
	invoker := newMockInvoker().succeed(ModelNovaCanvas, []byte("png-bytes"))
	chain := NewImageChain(invoker, nil, time.Second, nil)
	logRepo := repository.NewAICallLogRepository(db)
	ai := NewAIService(AIConfig{}, text, chain, logRepo, nil)
	storage := &mockStorage{}
	repo := repository.NewCampaignRepository(db, nil)

	svc := NewCampaignService(ai, NewNormalizer(FallbackContent{}), storage, repo, logRepo, CampaignConfig{
		PlaceholderImageURL: "https://placeholder.test/img.png",
		PlaceholderVideoURL: "https://placeholder.test/video.mp4",
	}, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &campaignFixture{svc: svc, text: text, invoker: invoker, storage: storage, repo: repo}
}

func TestGenerationRequest_WithDefaults(t *testing.T) {
	req := GenerationRequest{Description: "  bottles  "}.WithDefaults()

	assert.Equal(t, "bottles", req.Description)
	assert.Equal(t, "professional", req.ContentStyle)
	assert.Equal(t, "instagram-post", req.PlatformFormat)
	assert.Equal(t, "casual", req.ToneOfVoice)
	assert.Equal(t, "image", req.MediaType)
	assert.Equal(t, "english", req.Language)
}

func TestGenerateCampaign_Success(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{
		Description: "Eco-friendly water bottles for active lifestyle",
		Language:    "bilingual",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, campaign.ID)
	assert.Equal(t, "Stay cool all day", campaign.Caption)
	assert.Equal(t, []string{"Hydrate", "EcoLife"}, []string(campaign.Hashtags))
	assert.Equal(t, []string{"friendly", "water", "bottles", "active", "lifestyle"}, []string(campaign.Keywords))
	assert.True(t, strings.HasPrefix(campaign.ImageURL, "https://cdn.example.com/generated-images/"))
	assert.False(t, campaign.ImageFallback)
	assert.Empty(t, campaign.VideoURL)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), campaign.CreatedAt)

	// 提示词包含生成参数
	require.Len(t, f.text.prompts, 1)
	prompt := f.text.prompts[0]
	assert.Contains(t, prompt, "Content Style: professional")
	assert.Contains(t, prompt, "Target Market: Malaysia")
	assert.Contains(t, prompt, "8 relevant hashtags for Malaysian market")
	assert.Contains(t, prompt, "Mix English and Bahasa Malaysia naturally.")

	// 预览不落库
	_, err = f.repo.GetByID(context.Background(), campaign.ID)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestGenerateCampaign_ImageChainExhausted(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)
	f.invoker.fail(ModelNovaCanvas)

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "water bottles"})
	require.NoError(t, err)

	assert.Equal(t, "https://placeholder.test/img.png", campaign.ImageURL)
	assert.True(t, campaign.ImageFallback)
	assert.Equal(t, 4, f.invoker.callCount())
}

func TestGenerateCampaign_UploadFailureFallsBack(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)
	f.storage.uploadErr = errors.New("bucket missing")

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "water bottles"})
	require.NoError(t, err)
	assert.Equal(t, "https://placeholder.test/img.png", campaign.ImageURL)
	assert.True(t, campaign.ImageFallback)
}

func TestGenerateCampaign_TextTransportError(t *testing.T) {
	f := newCampaignFixture(t, "")
	f.text.err = errors.New("bedrock unreachable")

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "water bottles"})
	assert.Nil(t, campaign)
	assert.ErrorContains(t, err, "bedrock unreachable")
	assert.Equal(t, 0, f.invoker.callCount())
}

func TestGenerateCampaign_UnparseableOutput(t *testing.T) {
	f := newCampaignFixture(t, "I cannot produce JSON today")

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "water bottles"})
	require.NoError(t, err)
	assert.Equal(t, "I cannot produce JSON today", campaign.Caption)
	assert.Len(t, campaign.Hashtags, 5)
	assert.NotEmpty(t, campaign.ImagePrompt)
}

func TestGenerateCampaign_EmptyCaptionFilled(t *testing.T) {
	f := newCampaignFixture(t, `{"caption":"","hashtags":["a"],"imagePrompt":""}`)

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "water bottles"})
	require.NoError(t, err)
	assert.NotEmpty(t, campaign.Caption)
	// 图片提示词为空时使用原始描述
	assert.Equal(t, 1, f.invoker.callCount())
}

func TestGenerateCampaign_MediaTypes(t *testing.T) {
	t.Run("video", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "bottles", MediaType: "video"})
		require.NoError(t, err)
		assert.Equal(t, "https://placeholder.test/video.mp4", campaign.VideoURL)
		assert.Equal(t, "https://placeholder.test/img.png", campaign.ImageURL)
		assert.Equal(t, 0, f.invoker.callCount())
	})

	t.Run("both", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "bottles", MediaType: "both"})
		require.NoError(t, err)
		assert.Equal(t, "https://placeholder.test/video.mp4", campaign.VideoURL)
		assert.Contains(t, campaign.ImageURL, "generated-images/")
	})

	t.Run("video带原图", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{
			Description: "bottles",
			MediaType:   "video",
			SourceImage: &UploadedImage{Data: []byte("jpg"), Filename: "product.jpg", ContentType: "image/jpeg"},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/source-images/product.jpg", campaign.SourceImageURL)
		assert.Equal(t, campaign.SourceImageURL, campaign.ImageURL)
	})
}

func TestGenerateCampaign_SourceImageURLTransferFails(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)
	f.storage.fromURLErr = errors.New("download failed")

	campaign, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{
		Description:    "bottles",
		SourceImageURL: "https://shop.example.com/p.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/p.jpg", campaign.SourceImageURL)
}

func TestGenerateCampaign_EmptyDescription(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)

	_, err := f.svc.GenerateCampaign(context.Background(), GenerationRequest{Description: "   "})
	assert.ErrorIs(t, err, ErrEmptyDescription)
	assert.Empty(t, f.text.prompts)
}

func TestGenerateTextContent(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)

	content, err := f.svc.GenerateTextContent(context.Background(), "Handmade batik scarves")
	require.NoError(t, err)
	assert.Equal(t, "text", content.Type)
	assert.Equal(t, "Stay cool all day", content.Caption)
	assert.Equal(t, []string{"handmade", "batik", "scarves"}, content.Keywords)
	assert.Contains(t, f.text.prompts[0], "5 relevant hashtags")
}

func TestGenerateImageContent(t *testing.T) {
	t.Run("成功", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		content, err := f.svc.GenerateImageContent(context.Background(), "steel bottle")
		require.NoError(t, err)
		assert.False(t, content.Fallback)
		assert.Equal(t, ModelNovaCanvas, content.ModelID)
		assert.Equal(t, []string{"generated-images/image.png"}, f.storage.uploads)
	})

	t.Run("降级链耗尽", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		f.invoker.fail(ModelNovaCanvas)
		content, err := f.svc.GenerateImageContent(context.Background(), "steel bottle")
		require.NoError(t, err)
		assert.True(t, content.Fallback)
		assert.Equal(t, "https://placeholder.test/img.png", content.ImageURL)
		assert.Contains(t, content.Error, ErrImageChainExhausted.Error())
	})

	t.Run("未配置存储", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		f.svc.storage = nil
		content, err := f.svc.GenerateImageContent(context.Background(), "steel bottle")
		require.NoError(t, err)
		assert.True(t, content.Fallback)
		assert.Equal(t, ErrStorageNotConfigured.Error(), content.Error)
	})

	t.Run("空提示词", func(t *testing.T) {
		f := newCampaignFixture(t, validCompletion)
		_, err := f.svc.GenerateImageContent(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyDescription)
	})
}

func TestSaveCampaign(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)
	ctx := context.Background()

	saved, err := f.svc.SaveCampaign(ctx, &model.Campaign{
		Description: "Eco-friendly water bottles",
		Caption:     "Stay cool",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "https://placeholder.test/img.png", saved.ImageURL)
	assert.Equal(t, []string{"friendly", "water", "bottles"}, []string(saved.Keywords))

	got, err := f.svc.GetCampaign(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stay cool", got.Caption)

	// 已有ID保持不变
	preview, err := f.svc.GenerateCampaign(ctx, GenerationRequest{Description: "bottles"})
	require.NoError(t, err)
	previewID := preview.ID
	saved, err = f.svc.SaveCampaign(ctx, preview)
	require.NoError(t, err)
	assert.Equal(t, previewID, saved.ID)

	// 重复保存
	_, err = f.svc.SaveCampaign(ctx, &model.Campaign{ID: previewID, Description: "x", Caption: "y"})
	assert.ErrorIs(t, err, ErrCampaignExists)

	list, total, err := f.svc.ListCampaigns(ctx, repository.CampaignFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestSaveCampaign_Validation(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)

	_, err := f.svc.SaveCampaign(context.Background(), &model.Campaign{Caption: "c"})
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = f.svc.SaveCampaign(context.Background(), &model.Campaign{Description: "d"})
	assert.ErrorIs(t, err, ErrEmptyCaption)

	_, err = f.svc.SaveCampaign(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

// failingCampaignRepo 写入总是失败
type failingCampaignRepo struct {
	repository.CampaignRepository
	err error
}

func (r *failingCampaignRepo) Create(ctx context.Context, campaign *model.Campaign) error {
	return r.err
}

func TestSaveCampaign_PersistenceErrorUnchanged(t *testing.T) {
	dbErr := errors.New("database is locked")
	svc := NewCampaignService(nil, nil, nil, &failingCampaignRepo{err: dbErr}, nil, CampaignConfig{}, nil)

	_, err := svc.SaveCampaign(context.Background(), &model.Campaign{Description: "d", Caption: "c"})
	assert.Equal(t, dbErr, err)
	assert.Equal(t, "database is locked", err.Error())
}

func TestGetCampaignUsage(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)
	ctx := context.Background()

	preview, err := f.svc.GenerateCampaign(ctx, GenerationRequest{Description: "Eco-friendly water bottles"})
	require.NoError(t, err)
	_, err = f.svc.SaveCampaign(ctx, preview)
	require.NoError(t, err)

	stats, err := f.svc.GetCampaignUsage(ctx, preview.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalCalls)
	assert.EqualValues(t, 1, stats.TextCalls)
	assert.EqualValues(t, 1, stats.ImageCalls)
	assert.EqualValues(t, 2, stats.SuccessCount)

	_, err = f.svc.GetCampaignUsage(ctx, "missing")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestGetCampaign_NotFound(t *testing.T) {
	f := newCampaignFixture(t, validCompletion)

	_, err := f.svc.GetCampaign(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}
