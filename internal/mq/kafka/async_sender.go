package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-rbacadmin/internal/metrics"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AsyncMessage 待发送消息；Ctx 只用于关联 trace，不控制发送超时
type AsyncMessage struct {
	Ctx       context.Context
	Key       []byte
	Value     []byte
	Headers   map[string]string
	EnqueueAt time.Time
}

// ErrQueueFull 队列已满，消息被丢弃
var ErrQueueFull = errors.New("kafka async queue full")

// batchWriter 便于测试替换 kafka Writer
type batchWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
}

// AsyncSender 有界队列 + 多 worker 批量写 Kafka。
// 达到 maxBatch 或等待超过 maxWait 触发 flush；批量失败时逐条重试一次。
type AsyncSender struct {
	producer *Producer
	writer   batchWriter
	logger   *zap.Logger
	queue    chan AsyncMessage
	workers  int
	wg       sync.WaitGroup
	closeMu  sync.RWMutex
	closed   bool

	maxBatch int
	maxWait  time.Duration
}

func NewAsyncSender(p *Producer, l *zap.Logger, queueSize, workers, maxBatch int, maxWait time.Duration) *AsyncSender {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if maxWait <= 0 {
		maxWait = 20 * time.Millisecond
	}
	if l == nil {
		l = zap.NewNop()
	}
	s := &AsyncSender{
		producer: p,
		logger:   l,
		queue:    make(chan AsyncMessage, queueSize),
		workers:  workers,
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
	if p != nil {
		s.writer = p.Writer
	}
	return s
}

func (s *AsyncSender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run()
	}
}

func (s *AsyncSender) run() {
	defer s.wg.Done()
	batch := make([]AsyncMessage, 0, s.maxBatch)
	timer := time.NewTimer(s.maxWait)
	timer.Stop()
	var timerCh <-chan time.Time
	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		s.flush(batch, reason)
		batch = batch[:0]
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerCh = nil
	}
	for {
		select {
		case msg, ok := <-s.queue:
			if !ok {
				flush("shutdown")
				return
			}
			metrics.AuditQueueDepth.Dec()
			batch = append(batch, msg)
			if len(batch) == 1 {
				timer.Reset(s.maxWait)
				timerCh = timer.C
			}
			if len(batch) >= s.maxBatch {
				flush("size")
			}
		case <-timerCh:
			timerCh = nil
			flush("timeout")
		}
	}
}

func (s *AsyncSender) flush(batch []AsyncMessage, reason string) {
	start := time.Now()
	var maxDelay time.Duration
	msgs := make([]kafkaGo.Message, 0, len(batch))
	spans := make([]trace.Span, 0, len(batch))
	for _, m := range batch {
		if !m.EnqueueAt.IsZero() {
			if d := start.Sub(m.EnqueueAt); d > maxDelay {
				maxDelay = d
			}
		}
		msg, span := s.message(m)
		msgs = append(msgs, msg)
		spans = append(spans, span)
	}
	metrics.AuditQueueDelay.Observe(maxDelay.Seconds())

	writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := s.writer.WriteMessages(writeCtx, msgs...)
	cancel()
	for _, sp := range spans {
		if err != nil {
			sp.SetStatus(codes.Error, err.Error())
			sp.RecordError(err)
		}
		sp.End()
	}
	if err != nil {
		s.logger.Warn("audit_kafka_batch_failed", zap.Int("size", len(batch)), zap.Error(err))
		// 逐条重试一次，仍失败则计数丢弃
		for _, m := range msgs {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			rerr := s.writer.WriteMessages(ctx, m)
			cancel()
			if rerr != nil {
				metrics.AuditRecordsTotal.WithLabelValues("kafka", "error").Inc()
				continue
			}
			metrics.AuditRecordsTotal.WithLabelValues("kafka", "ok").Inc()
		}
	} else {
		metrics.AuditRecordsTotal.WithLabelValues("kafka", "ok").Add(float64(len(batch)))
	}
	metrics.AuditBatchSize.Observe(float64(len(batch)))
	metrics.AuditFlushDuration.WithLabelValues(reason).Observe(time.Since(start).Seconds())
}

func (s *AsyncSender) message(m AsyncMessage) (kafkaGo.Message, trace.Span) {
	ctx := m.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	var hs []kafkaGo.Header
	for k, v := range m.Headers {
		hs = append(hs, kafkaGo.Header{Key: k, Value: []byte(v)})
	}
	if s.producer == nil {
		return kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs}, trace.SpanFromContext(ctx)
	}
	ctx, span := s.producer.startSpan(ctx)
	hs = s.producer.injectHeaders(ctx, hs)
	return kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs}, span
}

// Enqueue 非阻塞；队列满或已关闭返回错误
func (s *AsyncSender) Enqueue(m AsyncMessage) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return ErrQueueFull
	}
	if m.EnqueueAt.IsZero() {
		m.EnqueueAt = time.Now()
	}
	select {
	case s.queue <- m:
		metrics.AuditQueueDepth.Inc()
		return nil
	default:
		metrics.AuditRecordsTotal.WithLabelValues("kafka", "dropped").Inc()
		return ErrQueueFull
	}
}

// Close 停止接收并等待队列排空
func (s *AsyncSender) Close(ctx context.Context) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()

	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
