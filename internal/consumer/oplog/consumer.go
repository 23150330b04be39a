// Package oplog 消费审计 topic，把操作日志落到 sys_operation_log。
package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/repository/dao"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Consumer struct {
	cfg    Config
	reader *kafka.Consumer
	Logs   *dao.OperationLogDAO
	logger *zap.Logger
}

func NewConsumer(cfg Config, logs *dao.OperationLogDAO, l *zap.Logger) *Consumer {
	if l == nil {
		l = zap.NewNop()
	}
	c := &Consumer{cfg: cfg, Logs: logs, logger: l}
	if len(cfg.Brokers) > 0 {
		c.reader = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topics:  []string{cfg.Topic},
		}, l)
	}
	return c
}

// Run 阻塞直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	if c.reader == nil {
		return fmt.Errorf("oplog consumer: no kafka brokers configured")
	}
	return c.reader.Start(ctx, c.Handle)
}

// Handle 单条消息落库；坏消息记日志后跳过，不阻塞后续消费
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) error {
	var rec model.SysOperationLog
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		c.logger.Warn("oplog_decode_failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		metrics.AuditRecordsTotal.WithLabelValues("consumer", "bad_message").Inc()
		return nil
	}
	rec.ID = 0
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := c.Logs.Create(ctx, &rec); err != nil {
		metrics.AuditRecordsTotal.WithLabelValues("consumer", "error").Inc()
		return err
	}
	metrics.AuditRecordsTotal.WithLabelValues("consumer", "ok").Inc()
	return nil
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
