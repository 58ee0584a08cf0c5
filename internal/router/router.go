package router

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"campaign_studio/internal/controller"
	"campaign_studio/internal/middleware"

	_ "campaign_studio/docs"
)

// Options 路由可选项
type Options struct {
	GenerateCooldown time.Duration               // 生成接口冷却间隔，0 表示不限流
	Limiter          *middleware.CooldownLimiter // 为空时新建
	UploadsDir       string                      // 本地存储目录，非空时挂载 /uploads
	TrustedProxies   []string                    // 为空时忽略 X-Forwarded-For，按直连地址限流
}

// SetupRouter 创建引擎并注册路由
func SetupRouter(campaignCtl *controller.CampaignController, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	// 限流按 ClientIP 计算，只信任配置的代理转发的地址
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Printf("警告: 代理配置无效，忽略转发地址: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	// 上传产品图走 multipart，限制内存缓冲
	r.MaxMultipartMemory = 16 << 20

	InitRoutes(r, campaignCtl, opts)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, campaignCtl *controller.CampaignController, opts Options) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 3. 本地存储的静态文件
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewCooldownLimiter()
	}
	cooldown := func(action middleware.ActionType) gin.HandlerFunc {
		return middleware.Cooldown(limiter, action, opts.GenerateCooldown)
	}

	// 4. API 路由组
	api := r.Group("/api")
	{
		// campaign 营销活动
		campaigns := api.Group("/campaigns")
		{
			// POST /api/campaigns/generate
			campaigns.POST("/generate", cooldown(middleware.ActionGenerate), campaignCtl.Generate)
			campaigns.POST("/generate-text", cooldown(middleware.ActionGenerateText), campaignCtl.GenerateText)
			campaigns.POST("/generate-image", cooldown(middleware.ActionGenerateImage), campaignCtl.GenerateImage)
			campaigns.POST("/save", campaignCtl.Save)

			// GET /api/campaigns
			campaigns.GET("", campaignCtl.GetList)
			campaigns.GET("/:id", campaignCtl.GetDetail)
			campaigns.GET("/:id/usage", campaignCtl.GetUsage)
		}
	}
}
