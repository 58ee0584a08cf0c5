package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"campaign_studio/pkg/utils"
)

// ==================== 接口定义 ====================

// StorageProvider 存储提供者接口
type StorageProvider interface {
	// Upload 上传文件，返回公开访问URL
	// filename 可带目录前缀，如 "generated-images/product.png"
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // S3 兼容存储的自定义端点 (可选)
	CDNDomain string // CDN域名 (可选)
	BasePath  string // 基础路径前缀 (可选)
	LocalDir  string // 本地存储落盘目录
	LocalURL  string // 本地存储公开访问的基础URL
}

// ==================== 工厂方法 ====================

func NewStorageProvider(ctx context.Context, cfg StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "local":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== StorageService ====================

// StorageService 对象存储服务，包装 StorageProvider
type StorageService struct {
	provider   StorageProvider
	downloader *resty.Client
}

// NewStorageService 创建存储服务
func NewStorageService(ctx context.Context, cfg StorageConfig) (*StorageService, error) {
	provider, err := NewStorageProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStorageServiceWithProvider(provider), nil
}

// NewStorageServiceWithProvider 使用已有 Provider 创建存储服务
func NewStorageServiceWithProvider(provider StorageProvider) *StorageService {
	return &StorageService{
		provider:   provider,
		downloader: utils.NewHTTPClient(30 * time.Second),
	}
}

// Upload 上传文件
func (s *StorageService) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("上传内容为空")
	}
	if contentType == "" {
		contentType = detectContentType(data)
	}
	return s.provider.Upload(ctx, data, filename, contentType)
}

// UploadFromURL 从URL下载并上传
func (s *StorageService) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	data, contentType, err := utils.DownloadFile(ctx, s.downloader, sourceURL)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, data, filename, contentType)
}

// GetProvider 获取底层 Provider
func (s *StorageService) GetProvider() StorageProvider {
	return s.provider
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	cdnDomain string
	basePath  string
}

func NewS3Storage(ctx context.Context, cfg StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("未配置 S3 Bucket")
	}

	awsCfg, err := loadAWSConfig(ctx, AWSCredentials{
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			// MinIO 等兼容存储
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  endpoint,
		cdnDomain: trimScheme(cfg.CDNDomain),
		basePath:  strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := generateKey(s.basePath, filename, time.Now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Storage) publicURL(key string) string {
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
}

// ==================== 本地存储 (开发测试用) ====================

type LocalStorage struct {
	baseDir  string
	baseURL  string
	basePath string
}

func NewLocalStorage(cfg StorageConfig) (*LocalStorage, error) {
	baseDir := cfg.LocalDir
	if baseDir == "" {
		baseDir = "./uploads"
	}
	baseURL := cfg.LocalURL
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %w", err)
	}

	return &LocalStorage{
		baseDir:  baseDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		basePath: strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := generateKey(s.basePath, filename, time.Now())
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// BaseDir 本地落盘目录，供静态文件路由使用
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// ==================== 工具函数 ====================

// generateKey 生成 [basePath/]dir/yyyy/mm/dd/uuid.ext
func generateKey(basePath, filename string, now time.Time) string {
	filename = path.Clean("/" + filepath.ToSlash(filename))
	dir := strings.Trim(path.Dir(filename), "/")

	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	newFilename := uuid.New().String() + strings.ToLower(ext)

	parts := make([]string, 0, 4)
	if basePath != "" {
		parts = append(parts, basePath)
	}
	if dir != "" {
		parts = append(parts, dir)
	}
	parts = append(parts, now.Format("2006/01/02"), newFilename)
	return strings.Join(parts, "/")
}

func trimScheme(domain string) string {
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}

func detectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// extensionFor 根据 Content-Type 推断扩展名
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
