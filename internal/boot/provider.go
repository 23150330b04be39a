package boot

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/discovery/etcd"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/repository/postgres"
	redisrepo "go-rbacadmin/internal/repository/redis"
	"go-rbacadmin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *gorm.DB
	Redis  *redisrepo.Client
	Kafka  *kafka.Producer
	Etcd   *etcd.Client
	HTTP   *gin.Engine
	Sender *kafka.AsyncSender

	mu         sync.Mutex
	reg        *etcd.Registration
	tracerProv *sdktrace.TracerProvider
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp 迁移、初始化数据、预热配置，然后启动后台任务（审计发送、Redis 心跳、etcd 注册）
func NewApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client,
	sender *kafka.AsyncSender, configs *service.ConfigService, engine *gin.Engine) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Etcd: e, HTTP: engine, Sender: sender, ctx: ctx, cancel: cancel}
	bootCtx := logging.IntoContext(ctx, l.Logger)

	if c.OTel.Enable {
		app.initTracing(bootCtx)
	}
	if c.Postgres.AutoMigrate {
		if err := postgres.AutoMigrateModels(db, model.All()...); err != nil {
			cancel()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		l.Info("auto_migrate_done")
	}
	if c.Seed.Enabled {
		if err := service.NewSeeder(db, c.Seed.AdminPassword).Run(bootCtx); err != nil {
			cancel()
			return nil, err
		}
	}
	if n, err := configs.Preload(bootCtx); err != nil {
		l.Warn("config_preload_failed", zap.Error(err))
	} else {
		l.Info("config_preloaded", zap.Int("count", n))
	}

	if sender != nil {
		sender.Start()
	}
	if r != nil {
		go app.redisHeartbeat()
	}
	if e != nil {
		go app.register()
	}
	return app, nil
}

func (a *App) initTracing(ctx context.Context) {
	c, l := a.Config, a.Logger
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.OTel.Endpoint)}
	if c.OTel.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exp, err := otlptracegrpc.New(dialCtx, opts...)
	if err != nil {
		l.Error("otel_exporter_init_failed", zap.Error(err))
		return
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
		semconv.DeploymentEnvironmentKey.String(c.AppMeta.Env),
	))
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.OTel.SamplerRatio))
	a.tracerProv = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res), sdktrace.WithSampler(sampler))
	otel.SetTracerProvider(a.tracerProv)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	l.Info("otel_tracer_provider_initialized", zap.String("endpoint", c.OTel.Endpoint))

	if a.DB != nil {
		if err := a.DB.Use(tracing.NewPlugin()); err != nil {
			l.Error("gorm_tracing_plugin_failed", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := redisotel.InstrumentTracing(a.Redis.Client); err != nil {
			l.Error("redis_tracing_hook_failed", zap.Error(err))
		}
	}
}

// redisHeartbeat 只在状态切换时打日志
func (a *App) redisHeartbeat() {
	c := a.Config.Redis
	interval := time.Duration(c.HeartbeatSec) * time.Second
	if interval < 2*time.Second {
		interval = 2 * time.Second
	}
	timeout := time.Duration(c.PingTimeoutMS) * time.Millisecond
	up := true
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(a.ctx, timeout)
			err := a.Redis.Ping(ctx)
			cancel()
			if err != nil {
				metrics.RedisUp.Set(0)
				if up {
					a.Logger.Warn("redis_down", zap.Error(err))
				}
				up = false
				continue
			}
			metrics.RedisUp.Set(1)
			if !up {
				a.Logger.Info("redis_recovered")
			}
			up = true
		}
	}
}

// register key 以 ip:port 结尾，重启后覆盖同一个实例
func (a *App) register() {
	c := a.Config
	port := "8080"
	if _, p, err := net.SplitHostPort(c.HTTP.Addr); err == nil && p != "" {
		port = p
	}
	ip := firstNonLoopbackIPv4()
	if ip == "" {
		ip = "127.0.0.1"
	}
	key := fmt.Sprintf("%s/%s/%s/%s:%s", c.Etcd.ServicePrefix, c.AppMeta.Env, c.AppMeta.Version, ip, port)
	val, _ := json.Marshal(map[string]interface{}{
		"instance_id":  uuid.NewString(),
		"name":         c.AppMeta.Name,
		"env":          c.AppMeta.Env,
		"version":      c.AppMeta.Version,
		"addr":         net.JoinHostPort(ip, port),
		"startup_unix": time.Now().Unix(),
	})
	reg, err := a.Etcd.Register(a.ctx, key, string(val), 5, a.Logger.Logger)
	if err != nil {
		metrics.EtcdUp.Set(0)
		a.Logger.Error("etcd_register_failed", zap.String("key", key), zap.Error(err))
		return
	}
	a.mu.Lock()
	a.reg = reg
	a.mu.Unlock()
	metrics.EtcdUp.Set(1)
	a.Logger.Info("etcd_registered", zap.String("key", key))
}

// Close 先下线再停后台任务，最后关连接
func (a *App) Close() {
	a.mu.Lock()
	reg := a.reg
	a.mu.Unlock()
	if a.Etcd != nil && reg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.Etcd.Deregister(ctx, reg)
		cancel()
		metrics.EtcdUp.Set(0)
	}
	a.cancel()
	if a.Sender != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.Sender.Close(ctx); err != nil {
			a.Logger.Error("audit_sender_close_error", zap.Error(err))
		}
		cancel()
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Logger.Error("db_close_error", zap.Error(err))
			}
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	if a.tracerProv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.tracerProv.Shutdown(ctx); err != nil {
			a.Logger.Error("otel_tracer_shutdown_error", zap.Error(err))
		}
		cancel()
	}
	_ = a.Logger.Sync()
}

func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return ""
}
