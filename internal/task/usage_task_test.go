package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campaign_studio/internal/middleware"
	"campaign_studio/internal/model"
	"campaign_studio/internal/repository"
)

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.AICallLog{}))
	return db
}

func TestUsageReportTask_Execute(t *testing.T) {
	db := setupTaskTestDB(t)
	today := time.Date(2026, 5, 20, 0, 5, 0, 0, time.UTC)
	yesterday := time.Date(2026, 5, 19, 10, 0, 0, 0, time.UTC)

	logs := []model.AICallLog{
		{BaseModel: model.BaseModel{CreatedAt: yesterday}, CallType: model.AICallTypeText, ModelName: "llama", DurationMs: 100, Status: model.AICallStatusSuccess},
		{BaseModel: model.BaseModel{CreatedAt: yesterday}, CallType: model.AICallTypeImage, ModelName: "nova", DurationMs: 300, Status: model.AICallStatusFailed},
		{BaseModel: model.BaseModel{CreatedAt: yesterday}, CallType: model.AICallTypeImage, ModelName: "titan", DurationMs: 200, Status: model.AICallStatusSuccess},
		// 统计周期之外
		{BaseModel: model.BaseModel{CreatedAt: today}, CallType: model.AICallTypeText, ModelName: "llama", DurationMs: 100, Status: model.AICallStatusSuccess},
		{BaseModel: model.BaseModel{CreatedAt: yesterday.Add(-48 * time.Hour)}, CallType: model.AICallTypeText, ModelName: "llama", Status: model.AICallStatusSuccess},
	}
	require.NoError(t, db.Create(&logs).Error)

	task := NewUsageReportTask(repository.NewAICallLogRepository(db), nil, "0 5 0 * * *")
	task.now = func() time.Time { return today }

	report, err := task.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC), report.Start)
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), report.End)
	assert.EqualValues(t, 3, report.Total.TotalCalls)
	assert.EqualValues(t, 1, report.Total.TextCalls)
	assert.EqualValues(t, 2, report.Total.ImageCalls)
	assert.EqualValues(t, 1, report.Total.FailedCount)
	assert.Len(t, report.Models, 3)
}

func TestUsageReportTask_SweepsLimiter(t *testing.T) {
	db := setupTaskTestDB(t)
	limiter := middleware.NewCooldownLimiter()
	limiter.Check("generate:old", time.Second)

	task := NewUsageReportTask(repository.NewAICallLogRepository(db), limiter, "0 5 0 * * *")
	// 条目刚写入，一天内不会被清理
	_, err := task.Execute(context.Background())
	require.NoError(t, err)
	assert.False(t, limiter.Check("generate:old", time.Hour).Allowed)
}

func TestUsageReportTask_StartInvalidSpec(t *testing.T) {
	db := setupTaskTestDB(t)
	task := NewUsageReportTask(repository.NewAICallLogRepository(db), nil, "not a cron")

	assert.Error(t, task.Start())
}

func TestUsageReportTask_StartStop(t *testing.T) {
	db := setupTaskTestDB(t)
	task := NewUsageReportTask(repository.NewAICallLogRepository(db), nil, "0 5 0 * * *")

	require.NoError(t, task.Start())
	assert.Len(t, task.Cron.Entries(), 1)
	task.Stop()
}
