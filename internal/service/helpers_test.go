package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campaign_studio/internal/model"
)

// ==================== 测试数据库 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Campaign{}, &model.AICallLog{}))
	return db
}

// ==================== Mock ModelInvoker ====================

type mockInvoker struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]func(ctx context.Context, body []byte) ([]byte, error)
}

func newMockInvoker() *mockInvoker {
	return &mockInvoker{responses: make(map[string]func(ctx context.Context, body []byte) ([]byte, error))}
}

func (m *mockInvoker) on(modelID string, fn func(ctx context.Context, body []byte) ([]byte, error)) *mockInvoker {
	m.responses[modelID] = fn
	return m
}

func (m *mockInvoker) fail(modelID string) *mockInvoker {
	return m.on(modelID, func(context.Context, []byte) ([]byte, error) {
		return nil, fmt.Errorf("%s 不可用", modelID)
	})
}

func (m *mockInvoker) succeed(modelID string, image []byte) *mockInvoker {
	return m.on(modelID, func(context.Context, []byte) ([]byte, error) {
		return json.Marshal(map[string]interface{}{
			"images": []string{base64.StdEncoding.EncodeToString(image)},
		})
	})
}

func (m *mockInvoker) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, modelID)
	fn, ok := m.responses[modelID]
	m.mu.Unlock()

	if !ok {
		return nil, errors.New("未知模型: " + modelID)
	}
	return fn(ctx, body)
}

func (m *mockInvoker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ==================== Mock TextGenerator ====================

type mockTextGenerator struct {
	completion string
	err        error
	prompts    []string
}

func (m *mockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.completion, nil
}

func (m *mockTextGenerator) Provider() string { return "mock" }
func (m *mockTextGenerator) Model() string    { return "mock-text" }

// ==================== Mock ObjectStorage ====================

type mockStorage struct {
	uploads    []string
	uploadErr  error
	fromURLErr error
}

func (m *mockStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, filename)
	return "https://cdn.example.com/" + filename, nil
}

func (m *mockStorage) UploadFromURL(ctx context.Context, sourceURL string, filename string) (string, error) {
	if m.fromURLErr != nil {
		return "", m.fromURLErr
	}
	m.uploads = append(m.uploads, filename)
	return "https://cdn.example.com/" + filename, nil
}
