// Package audit 操作日志落地：直接写库或经 Kafka 异步投递。
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/repository/dao"
)

// Sink 审计记录写出端；实现不得阻塞请求路径太久
type Sink interface {
	Write(ctx context.Context, rec *model.SysOperationLog) error
}

// DBSink 同步写 sys_operation_log
type DBSink struct{ Logs *dao.OperationLogDAO }

func NewDBSink(d *dao.OperationLogDAO) *DBSink { return &DBSink{Logs: d} }

func (s *DBSink) Write(ctx context.Context, rec *model.SysOperationLog) error {
	if err := s.Logs.Create(ctx, rec); err != nil {
		metrics.AuditRecordsTotal.WithLabelValues("db", "error").Inc()
		return err
	}
	metrics.AuditRecordsTotal.WithLabelValues("db", "ok").Inc()
	return nil
}

// KafkaSink 序列化后进入异步队列，由 oplog 消费者落库
type KafkaSink struct{ Sender *kafka.AsyncSender }

func NewKafkaSink(s *kafka.AsyncSender) *KafkaSink { return &KafkaSink{Sender: s} }

func (s *KafkaSink) Write(ctx context.Context, rec *model.SysOperationLog) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	msg := kafka.AsyncMessage{
		Ctx:   ctx,
		Key:   []byte(strconv.FormatInt(rec.AdminID, 10)),
		Value: b,
	}
	if tid := logging.TraceID(ctx); tid != "" {
		msg.Headers = map[string]string{"trace_id": tid}
	}
	return s.Sender.Enqueue(msg)
}
