package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campaign_studio/internal/config"
	"campaign_studio/internal/controller"
	"campaign_studio/internal/middleware"
	"campaign_studio/internal/model"
	"campaign_studio/internal/repository"
	"campaign_studio/internal/router"
	"campaign_studio/internal/service"
	"campaign_studio/internal/task"
	"campaign_studio/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	logger := initLogger(cfg.Server.LogLevel)

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(context.Background(), cfg, db, logger)

	// 4. 启动定时任务
	initTasks(cfg, deps)

	// 5. 初始化路由
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(deps.Controllers.Campaign, router.Options{
		GenerateCooldown: cfg.Server.GenerateCooldown,
		Limiter:          deps.Limiter,
		UploadsDir:       deps.UploadsDir,
		TrustedProxies:   cfg.Server.TrustedProxies,
	})

	// 6. 启动服务
	startServer(cfg.Server.Port, r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Limiter     *middleware.CooldownLimiter
	UsageTask   *task.UsageReportTask
	UploadsDir  string // 本地存储时非空
}

// Repositories 仓库集合
type Repositories struct {
	Campaign  repository.CampaignRepository
	AiCallLog repository.AICallLogRepository
}

// Services 服务集合
type Services struct {
	Storage  *service.StorageService
	AI       *service.AIService
	Campaign *service.CampaignService
}

// Controllers 控制器集合
type Controllers struct {
	Campaign *controller.CampaignController
}

// ==================== 初始化函数 ====================

// initLogger 初始化结构化日志
func initLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lv}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN, cfg.Database.Debug,
		// Campaign
		&model.Campaign{},
		// AI
		&model.AICallLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Campaign:  repository.NewCampaignRepository(db, logger),
		AiCallLog: repository.NewAICallLogRepository(db),
	}

	// -------- 存储 & AI 服务 --------
	storageSvc := initStorageService(ctx, cfg)
	aiSvc := initAIService(ctx, cfg, repos.AiCallLog, logger)

	// -------- 业务服务 --------
	normalizer := service.NewNormalizer(service.FallbackContent{
		Hashtags:    cfg.Campaign.FallbackHashtags,
		ImagePrompt: cfg.Campaign.FallbackImagePrompt,
	})
	campaignCfg := service.CampaignConfig{
		TargetMarket:        cfg.Campaign.TargetMarket,
		PlaceholderImageURL: cfg.Campaign.PlaceholderImageURL,
		PlaceholderVideoURL: cfg.Campaign.PlaceholderVideoURL,
	}

	var storage service.ObjectStorage
	if storageSvc != nil {
		storage = storageSvc
	}
	campaignSvc := service.NewCampaignService(aiSvc, normalizer, storage, repos.Campaign, repos.AiCallLog, campaignCfg, logger)

	deps := &Dependencies{
		DB:    db,
		Repos: repos,
		Services: &Services{
			Storage:  storageSvc,
			AI:       aiSvc,
			Campaign: campaignSvc,
		},
		// -------- Controller 层 --------
		Controllers: &Controllers{
			Campaign: controller.NewCampaignController(campaignSvc),
		},
		Limiter: middleware.NewCooldownLimiter(),
	}
	if storageSvc != nil {
		if local, ok := storageSvc.GetProvider().(*service.LocalStorage); ok {
			deps.UploadsDir = local.BaseDir()
		}
	}
	return deps
}

// initStorageService 初始化存储服务，失败时生成的图片退化为占位图
func initStorageService(ctx context.Context, cfg *config.Config) *service.StorageService {
	storageSvc, err := service.NewStorageService(ctx, service.StorageConfig{
		Provider:  cfg.Storage.Provider,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		CDNDomain: cfg.Storage.CDNDomain,
		BasePath:  cfg.Storage.BasePath,
		LocalDir:  cfg.Storage.LocalDir,
		LocalURL:  cfg.Storage.LocalURL,
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storageSvc
}

// initAIService 初始化文案模型与图片降级链
func initAIService(ctx context.Context, cfg *config.Config, logRepo repository.AICallLogRepository, logger *slog.Logger) *service.AIService {
	aiCfg := service.AIConfig{
		TextModel:    cfg.Text.Model,
		MaxTokens:    cfg.Text.MaxTokens,
		Temperature:  cfg.Text.Temperature,
		TopP:         cfg.Text.TopP,
		TextTimeout:  cfg.Text.CallTimeout,
		ImageTimeout: cfg.Image.CallTimeout,
	}

	invoker, err := service.NewBedrockInvoker(ctx, service.AWSCredentials{
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKey,
		SecretKey: cfg.AWS.SecretKey,
	})
	if err != nil {
		log.Fatalf("Bedrock 初始化失败: %v", err)
	}

	var text service.TextGenerator
	switch cfg.Text.Provider {
	case "gemini":
		text, err = service.NewGeminiTextGenerator(ctx, cfg.Text.GeminiAPIKey, aiCfg)
		if err != nil {
			log.Fatalf("Gemini 初始化失败: %v", err)
		}
	default:
		text = service.NewBedrockTextGenerator(invoker, aiCfg)
	}

	chain := service.NewImageChain(invoker, nil, aiCfg.ImageTimeout, logger)
	logger.Info("ai_service_ready", "text_provider", text.Provider(), "text_model", text.Model(), "image_models", chain.Candidates())

	return service.NewAIService(aiCfg, text, chain, logRepo, logger)
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies) {
	if cfg.Task.UsageReportCron == "" {
		log.Println("未配置 USAGE_REPORT_CRON，跳过用量日报任务")
		return
	}

	usageTask := task.NewUsageReportTask(deps.Repos.AiCallLog, deps.Limiter, cfg.Task.UsageReportCron)
	if err := usageTask.Start(); err != nil {
		log.Printf("警告: %v", err)
		return
	}
	deps.UsageTask = usageTask

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(port string, r *gin.Engine, deps *Dependencies) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	if deps.UsageTask != nil {
		deps.UsageTask.Stop()
	}
	if sqlDB, err := deps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("服务已退出")
}
