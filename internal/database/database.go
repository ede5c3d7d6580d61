package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumePreview/internal/config"
)

// slowQueryThreshold 以上的查询以 Warn 级别记录。
const slowQueryThreshold = 500 * time.Millisecond

// InitDatabase 连接 PostgreSQL。SQL 日志经 slog 输出，驱动错误翻译为 gorm 哨兵错误。
func InitDatabase(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.NewSlogLogger(log.With(slog.String("component", "gorm")), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate 创建或更新全部表结构。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Resume{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
