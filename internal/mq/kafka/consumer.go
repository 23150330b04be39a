package kafka

import (
	"context"
	"errors"
	"time"

	"go-rbacadmin/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int
	// Attempts 单条消息处理次数上限，用尽后提交 offset 跳过
	Attempts int
	Backoff  time.Duration
}

type MessageHandler func(ctx context.Context, msg kafkaGo.Message) error

// messageReader kafka Reader 的最小子集，测试里替换
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// Consumer 手动提交：处理完（或放弃）才提交 offset，进程崩溃时消息会重投
type Consumer struct {
	reader   messageReader
	logger   *zap.Logger
	attempts int
	backoff  time.Duration
}

func NewConsumer(cfg ConsumerConfig, l *zap.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	r := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		StartOffset: kafkaGo.FirstOffset,
	})
	return newConsumer(r, cfg, l)
}

func newConsumer(r messageReader, cfg ConsumerConfig, l *zap.Logger) *Consumer {
	if l == nil {
		l = zap.NewNop()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	return &Consumer{reader: r, logger: l, attempts: cfg.Attempts, backoff: cfg.Backoff}
}

// Start 阻塞消费直到 ctx 取消（返回 nil）或读取出错。
// 每条消息：提取上游 trace 上下文和 trace_id，建 consumer span，按退避重试 handler，最后提交。
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("nil reader")
	}
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.process(ctx, m, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("kafka_message_dropped",
				zap.String("topic", m.Topic), zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset), zap.Error(err))
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (c *Consumer) process(ctx context.Context, m kafkaGo.Message, handler MessageHandler) error {
	carrier := propagation.MapCarrier{}
	for _, h := range m.Headers {
		carrier[h.Key] = string(h.Value)
	}
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)
	if tid := carrier["trace_id"]; tid != "" {
		msgCtx = logging.WithTraceID(msgCtx, tid)
	}
	msgCtx, span := otel.Tracer("kafka-consumer").Start(msgCtx, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationName(m.Topic),
			attribute.Int("messaging.kafka.partition", m.Partition),
			attribute.Int64("messaging.kafka.offset", m.Offset),
			attribute.Int("messaging.message.size", len(m.Value)),
		))
	defer span.End()

	var err error
	for i := 1; i <= c.attempts; i++ {
		if err = handler(msgCtx, m); err == nil {
			return nil
		}
		span.RecordError(err)
		if i == c.attempts {
			break
		}
		c.logger.Warn("kafka_handler_retry", zap.Int64("offset", m.Offset), zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, ctx.Err().Error())
			return ctx.Err()
		case <-time.After(c.backoff * time.Duration(i)):
		}
	}
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
