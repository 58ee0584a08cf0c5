package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建带超时与重试的 Resty 客户端，用于拉取远程图片
func NewHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("User-Agent", "Campaign-Studio/1.0")
}

// DownloadFile 下载远程文件，返回内容与 Content-Type
func DownloadFile(ctx context.Context, client *resty.Client, url string) ([]byte, string, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("下载失败: %v", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("下载失败: HTTP %d", resp.StatusCode())
	}

	data := resp.Body()
	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
