package postgres

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN      string
	MaxOpen  int
	MaxIdle  int
	LogLevel string
}

func New(cfg Config, lg *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), GormConfig(cfg.LogLevel, lg))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}

// GormConfig 打开 TranslateError，唯一键冲突统一成 gorm.ErrDuplicatedKey；SQL 日志走 zap
func GormConfig(level string, lg *zap.Logger) *gorm.Config {
	lvl := logger.Warn
	switch level {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	w := zapWriter{lg.WithOptions(zap.AddCallerSkip(3))}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(w, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

type zapWriter struct{ lg *zap.Logger }

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.lg.Sugar().Logf(zapcore.InfoLevel, format, args...)
}

// AutoMigrateModels 供外部在初始化后调用
func AutoMigrateModels(db *gorm.DB, models ...interface{}) error {
	return db.AutoMigrate(models...)
}
