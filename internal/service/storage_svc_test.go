package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStorageService(t *testing.T) (*StorageService, string) {
	tempDir := t.TempDir()
	svc, err := NewStorageService(context.Background(), StorageConfig{
		Provider: "local",
		LocalDir: tempDir,
		LocalURL: "http://localhost:8080/uploads/",
	})
	require.NoError(t, err)
	return svc, tempDir
}

func TestNewStorageService_Local(t *testing.T) {
	svc, dir := newLocalStorageService(t)

	local, ok := svc.GetProvider().(*LocalStorage)
	require.True(t, ok)
	assert.Equal(t, dir, local.BaseDir())
}

func TestNewStorageService_InvalidProvider(t *testing.T) {
	_, err := NewStorageService(context.Background(), StorageConfig{Provider: "invalid"})
	assert.Error(t, err)
}

func TestNewStorageService_S3RequiresBucket(t *testing.T) {
	_, err := NewStorageService(context.Background(), StorageConfig{Provider: "s3", Region: "us-east-1"})
	assert.Error(t, err)
}

func TestLocalStorage_Upload(t *testing.T) {
	svc, tempDir := newLocalStorageService(t)

	url, err := svc.Upload(context.Background(), []byte("Hello, World!"), "generated-images/test.PNG", "image/png")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^http://localhost:8080/uploads/generated-images/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.png$`)
	assert.Regexp(t, pattern, url)

	key := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(tempDir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(data))
}

func TestLocalStorage_UploadEmpty(t *testing.T) {
	svc, _ := newLocalStorageService(t)

	_, err := svc.Upload(context.Background(), nil, "a.png", "image/png")
	assert.Error(t, err)
}

func TestLocalStorage_UploadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake-jpeg"))
	}))
	defer server.Close()

	svc, _ := newLocalStorageService(t)
	url, err := svc.UploadFromURL(context.Background(), server.URL+"/p.jpg", "source-images/source.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "/uploads/source-images/")
}

func TestGenerateKey(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		basePath string
		filename string
		prefix   string
		ext      string
	}{
		{name: "带目录", filename: "generated-images/a.png", prefix: "generated-images/2026/03/09/", ext: ".png"},
		{name: "带基础路径", basePath: "campaigns", filename: "source-images/a.JPG", prefix: "campaigns/source-images/2026/03/09/", ext: ".jpg"},
		{name: "无扩展名", filename: "raw", prefix: "2026/03/09/", ext: ".jpg"},
		{name: "路径穿越", filename: "../../etc/passwd.png", prefix: "etc/2026/03/09/", ext: ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := generateKey(tt.basePath, tt.filename, now)
			assert.True(t, strings.HasPrefix(key, tt.prefix), key)
			assert.True(t, strings.HasSuffix(key, tt.ext), key)
		})
	}
}

func TestS3Storage_PublicURL(t *testing.T) {
	tests := []struct {
		name    string
		storage S3Storage
		want    string
	}{
		{name: "CDN", storage: S3Storage{bucket: "b", region: "r", cdnDomain: "cdn.example.com"}, want: "https://cdn.example.com/k.png"},
		{name: "自定义端点", storage: S3Storage{bucket: "b", region: "r", endpoint: "http://minio:9000"}, want: "http://minio:9000/b/k.png"},
		{name: "默认", storage: S3Storage{bucket: "b", region: "ap-southeast-1"}, want: "https://b.s3.ap-southeast-1.amazonaws.com/k.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.storage.publicURL("k.png"))
		})
	}
}

func TestTrimScheme(t *testing.T) {
	assert.Equal(t, "cdn.example.com", trimScheme("https://cdn.example.com/"))
	assert.Equal(t, "cdn.example.com", trimScheme("http://cdn.example.com"))
}
