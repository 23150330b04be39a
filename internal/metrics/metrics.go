package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by caller (anonymous/admin/super)",
	}, []string{"path", "method", "status", "caller"})
	APIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Error envelopes by route and error code (UNAUTHORIZED/FORBIDDEN/...)",
	}, []string{"path", "code"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})
)

// ===== 业务指标 =====
var (
	LoginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_total",
		Help: "Login attempts by result (ok/bad_credentials/disabled/rate_limited)",
	}, []string{"result"})
	PermissionDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_permission_denied_total",
		Help: "Requests rejected by permission check",
	}, []string{"permission"})
	PermissionInvalidateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_permission_invalidate_total",
		Help: "Permission cache invalidations by scope (admin/role/all)",
	}, []string{"scope"})
	PermissionLoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_permission_load_total",
		Help: "Permission set loads by source (cache/db)",
	}, []string{"source"})
	MenuTreeOrphans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rbac_menu_tree_orphans",
		Help: "Menu rows not reachable from a root in the last built tree",
	})

	AuditRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_records_total",
		Help: "Audit records by sink and result",
	}, []string{"sink", "result"})
	AuditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_kafka_queue_depth",
		Help: "Audit records waiting in the async kafka queue",
	})
	AuditBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_kafka_batch_size",
		Help:    "Audit records per kafka batch",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})
	AuditFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audit_kafka_flush_duration_seconds",
		Help:    "Kafka batch flush latency by trigger",
		Buckets: prometheus.DefBuckets,
	}, []string{"reason"})
	AuditQueueDelay = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_kafka_queue_delay_seconds",
		Help:    "Max time a record waited in queue before its batch flushed",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1},
	})

	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layered_cache_ops_total",
		Help: "Layered cache operations (hit_l1/hit_l2/miss/set/del)",
	}, []string{"op"})
)
