package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化 PostgreSQL 连接，失败直接退出
// dsn: 数据库连接字符串
// debug: 是否打印所有 SQL
// models: 需要自动建表/迁移的结构体指针
func InitDB(dsn string, debug bool, models ...interface{}) *gorm.DB {
	db, err := Open(postgres.Open(dsn), debug, models...)
	if err != nil {
		log.Fatalf("数据库初始化失败 (Database Init Failed): %v", err)
	}

	// 获取底层的 sqlDB 对象，用于设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 SQL DB 失败: %v", err)
	}

	// 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxIdleConns(10)
	// 设置打开数据库连接的最大数量
	sqlDB.SetMaxOpenConns(100)
	// 设置了连接可复用的最大时间
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("数据库连接成功 (Database Connected Successfully)")
	return db
}

// Open 按给定驱动打开连接并自动迁移
// 开启 TranslateError，唯一键冲突统一为 gorm.ErrDuplicatedKey
func Open(dialector gorm.Dialector, debug bool, models ...interface{}) (*gorm.DB, error) {
	// 开发环境下打印所有 SQL，方便调试
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("自动建表出错: %w", err)
		}
	}
	return db, nil
}
