package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"campaign_studio/internal/api/dto"
	"campaign_studio/internal/repository"
	"campaign_studio/internal/service"
)

// maxImageSize 上传产品图大小上限
const maxImageSize = 10 << 20

type CampaignController struct {
	campaignService *service.CampaignService
}

func NewCampaignController(campaignService *service.CampaignService) *CampaignController {
	return &CampaignController{campaignService: campaignService}
}

// ==========================================
// 1. 生成 (Generate)
// ==========================================

// Generate 生成营销活动预览
// @Summary 生成营销活动
// @Description 根据产品描述生成文案、标签与图片，返回预览 (不保存)。图片生成失败时使用占位图并标记 imageFallback
// @Tags Campaign
// @Accept multipart/form-data
// @Produce json
// @Param description formData string true "产品描述"
// @Param contentStyle formData string false "内容风格 (默认 professional)"
// @Param platformFormat formData string false "平台格式 (默认 instagram-post)"
// @Param toneOfVoice formData string false "语气 (默认 casual)"
// @Param mediaType formData string false "媒体类型 image/video/both (默认 image)"
// @Param language formData string false "语言 english/malay/bilingual (默认 english)"
// @Param imageUrl formData string false "已有产品图地址"
// @Param image formData file false "产品图"
// @Success 200 {object} model.Campaign
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 429 {object} dto.ErrorResp "请求过于频繁"
// @Failure 500 {object} dto.ErrorResp "生成失败"
// @Router /api/campaigns/generate [post]
func (h *CampaignController) Generate(c *gin.Context) {
	var req dto.GenerateCampaignReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sourceImage, err := readUploadedImage(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignService.GenerateCampaign(c.Request.Context(), service.GenerationRequest{
		Description:    req.Description,
		ContentStyle:   req.ContentStyle,
		PlatformFormat: req.PlatformFormat,
		ToneOfVoice:    req.ToneOfVoice,
		MediaType:      req.MediaType,
		Language:       req.Language,
		SourceImage:    sourceImage,
		SourceImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GenerateText 只生成文案
// @Summary 生成文案
// @Description 根据产品描述生成文案、5 个标签和图片提示词
// @Tags Campaign
// @Accept json
// @Produce json
// @Param request body dto.GenerateTextReq true "生成参数"
// @Success 200 {object} service.TextContent
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 500 {object} dto.ErrorResp "生成失败"
// @Router /api/campaigns/generate-text [post]
func (h *CampaignController) GenerateText(c *gin.Context) {
	var req dto.GenerateTextReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.campaignService.GenerateTextContent(c.Request.Context(), req.Description)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// GenerateImage 只生成图片
// @Summary 生成图片
// @Description 按降级链生成图片并上传，全部模型失败时返回占位图 (fallback=true)
// @Tags Campaign
// @Accept json
// @Produce json
// @Param request body dto.GenerateImageReq true "生成参数 (imagePrompt 或 description)"
// @Success 200 {object} service.ImageContent
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Router /api/campaigns/generate-image [post]
func (h *CampaignController) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.campaignService.GenerateImageContent(c.Request.Context(), req.Prompt())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// ==========================================
// 2. 保存 (Save)
// ==========================================

// Save 保存营销活动
// @Summary 保存营销活动
// @Description 追加保存营销活动，未带 id 时自动分配；id 已存在返回 409
// @Tags Campaign
// @Accept json
// @Produce json
// @Param request body dto.SaveCampaignReq true "营销活动"
// @Success 200 {object} model.Campaign
// @Failure 400 {object} dto.ErrorResp "参数错误"
// @Failure 409 {object} dto.ErrorResp "已存在"
// @Failure 500 {object} dto.ErrorResp "保存失败"
// @Router /api/campaigns/save [post]
func (h *CampaignController) Save(c *gin.Context) {
	var req dto.SaveCampaignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.campaignService.SaveCampaign(c.Request.Context(), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// ==========================================
// 3. 读操作 (List / Detail)
// ==========================================

// GetList 获取营销活动列表
// @Summary 获取营销活动列表
// @Description 按创建时间倒序返回，不传 page 时返回全部
// @Tags Campaign
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量 (默认20)"
// @Param platform query string false "平台格式"
// @Param language query string false "语言"
// @Success 200 {object} dto.CampaignListResp
// @Failure 500 {object} dto.ErrorResp "查询失败"
// @Router /api/campaigns [get]
func (h *CampaignController) GetList(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.CampaignFilter{
		Page:     page,
		PageSize: pageSize,
		Platform: c.Query("platform"),
		Language: c.Query("language"),
	}

	list, total, err := h.campaignService.ListCampaigns(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CampaignListResp{
		Data:  list,
		Total: total,
		Page:  page,
	})
}

// GetDetail 获取营销活动详情
// @Summary 获取营销活动详情
// @Tags Campaign
// @Produce json
// @Param id path string true "营销活动 ID"
// @Success 200 {object} model.Campaign
// @Failure 404 {object} dto.ErrorResp "不存在"
// @Failure 500 {object} dto.ErrorResp "查询失败"
// @Router /api/campaigns/{id} [get]
func (h *CampaignController) GetDetail(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GetUsage 获取营销活动的模型调用用量
// @Summary 获取营销活动调用用量
// @Tags Campaign
// @Produce json
// @Param id path string true "营销活动 ID"
// @Success 200 {object} repository.AIUsageStats
// @Failure 404 {object} dto.ErrorResp "不存在"
// @Failure 500 {object} dto.ErrorResp "查询失败"
// @Router /api/campaigns/{id}/usage [get]
func (h *CampaignController) GetUsage(c *gin.Context) {
	stats, err := h.campaignService.GetCampaignUsage(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ==========================================
// 辅助函数
// ==========================================

// writeError 业务错误映射为 HTTP 状态码，其余按 500 原样返回
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrEmptyDescription), errors.Is(err, service.ErrEmptyCaption):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrCampaignNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCampaignExists):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// readUploadedImage 读取可选的上传图片，未上传时返回 nil
func readUploadedImage(c *gin.Context, field string) (*service.UploadedImage, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if fileHeader.Size > maxImageSize {
		return nil, fmt.Errorf("图片不能超过 %dMB", maxImageSize>>20)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("不支持的文件类型: %s", contentType)
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		return nil, err
	}

	return &service.UploadedImage{
		Data:        data,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
	}, nil
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxImageSize))
}
