package http

import (
	"context"
	"sync"
	"time"

	"go-rbacadmin/internal/discovery/etcd"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	redisrepo "go-rbacadmin/internal/repository/redis"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// depCheck 单个依赖的探测；未配置的依赖不注册，不影响 readiness
type depCheck struct {
	name    string
	timeout time.Duration
	gauge   prometheus.Gauge
	probe   func(ctx context.Context) error
}

type depResult struct {
	Dep        string  `json:"dep"`
	Up         bool    `json:"up"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Readiness /readyz 返回体
type Readiness struct {
	Status string      `json:"status"` // ok / degraded
	Time   string      `json:"time"`
	Detail []depResult `json:"detail"`
}

// HealthChecker 聚合 liveness / readiness；readiness 结果短暂缓存
type HealthChecker struct {
	checks []depCheck

	cacheMu     sync.Mutex
	cacheResult *Readiness
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client) *HealthChecker {
	h := &HealthChecker{cacheTTL: 2 * time.Second}
	if db != nil {
		h.checks = append(h.checks, depCheck{name: "db", timeout: 300 * time.Millisecond, gauge: metrics.DBUp, probe: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}})
	}
	if r != nil {
		h.checks = append(h.checks, depCheck{name: "redis", timeout: 250 * time.Millisecond, gauge: metrics.RedisUp, probe: r.Ping})
	}
	if p != nil {
		h.checks = append(h.checks, depCheck{name: "kafka", timeout: 250 * time.Millisecond, gauge: metrics.KafkaUp, probe: p.Ping})
	}
	if e != nil {
		h.checks = append(h.checks, depCheck{name: "etcd", timeout: 250 * time.Millisecond, gauge: metrics.EtcdUp, probe: func(ctx context.Context) error {
			_, err := e.Get(ctx, "health")
			return err
		}})
	}
	return h
}

// Liveness 只表示进程存活
func (h *HealthChecker) Liveness() map[string]string {
	return map[string]string{"status": "ok", "time": time.Now().Format(time.RFC3339)}
}

// Invalidate 丢弃缓存，下一次 Readiness 重新探测
func (h *HealthChecker) Invalidate() {
	h.cacheMu.Lock()
	h.cacheExpiry = time.Time{}
	h.cacheMu.Unlock()
}

// Readiness 并发探测全部依赖；任一不可用即 degraded / 503
func (h *HealthChecker) Readiness(ctx context.Context) (*Readiness, int) {
	h.cacheMu.Lock()
	if h.cacheResult != nil && time.Now().Before(h.cacheExpiry) {
		res := h.cacheResult
		h.cacheMu.Unlock()
		return res, statusOf(res)
	}
	h.cacheMu.Unlock()

	res := &Readiness{Status: "ok", Time: time.Now().Format(time.RFC3339), Detail: make([]depResult, len(h.checks))}
	var wg sync.WaitGroup
	for i, chk := range h.checks {
		wg.Add(1)
		go func(i int, chk depCheck) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, chk.timeout)
			defer cancel()
			start := time.Now()
			err := chk.probe(cctx)
			dur := time.Since(start)
			metrics.DependencyCheckDuration.WithLabelValues(chk.name).Observe(dur.Seconds())
			out := depResult{Dep: chk.name, Up: err == nil, DurationMS: float64(dur.Microseconds()) / 1000.0}
			if err != nil {
				out.Error = err.Error()
				chk.gauge.Set(0)
			} else {
				chk.gauge.Set(1)
			}
			res.Detail[i] = out
		}(i, chk)
	}
	wg.Wait()
	for _, d := range res.Detail {
		if !d.Up {
			res.Status = "degraded"
		}
	}

	h.cacheMu.Lock()
	h.cacheResult = res
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, statusOf(res)
}

func statusOf(r *Readiness) int {
	if r.Status != "ok" {
		return 503
	}
	return 200
}
