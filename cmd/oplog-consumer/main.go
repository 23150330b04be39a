// oplog-consumer 消费审计 topic 写入 sys_operation_log，与 api 共用配置文件。
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-rbacadmin/internal/boot"
	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/consumer/oplog"
	"go-rbacadmin/internal/repository/dao"

	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka.brokers is empty, nothing to consume")
	}
	lg, err := boot.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := boot.NewPostgres(cfg, lg)
	if err != nil {
		lg.Fatal("db_open_failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	c := oplog.NewConsumer(oplog.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OpLogTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	}, dao.NewOperationLogDAO(db), lg.Logger)
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	lg.Info("oplog_consumer_start", zap.String("topic", cfg.Kafka.OpLogTopic), zap.String("group", cfg.Kafka.ConsumerGroup))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("oplog_consumer_stopped", zap.Error(err))
		return
	}
	lg.Info("oplog_consumer_done")
}
