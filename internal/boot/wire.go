package boot

import (
	"time"

	"go-rbacadmin/internal/audit"
	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/discovery/etcd"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/internal/repository/postgres"
	redisrepo "go-rbacadmin/internal/repository/redis"
	jwtsec "go-rbacadmin/internal/security/jwt"
	httpSrv "go-rbacadmin/internal/server/http"
	adminh "go-rbacadmin/internal/server/http/handler/admin"
	sec "go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	})
}

func NewPostgres(c *config.Config, l *logging.Logger) (*gorm.DB, error) {
	return postgres.New(postgres.Config{DSN: c.Postgres.DSN, MaxOpen: c.Postgres.MaxOpen, MaxIdle: c.Postgres.MaxIdle, LogLevel: c.Postgres.LogLevel}, l.Logger)
}

// NewRedis 未配置地址时返回 nil，缓存和限流退回进程内实现
func NewRedis(c *config.Config) *redisrepo.Client {
	if c.Redis.Addr == "" {
		return nil
	}
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB,
		DialTimeout:  time.Duration(c.Redis.DialTimeoutMS) * time.Millisecond,
		ReadTimeout:  time.Duration(c.Redis.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(c.Redis.WriteTimeoutMS) * time.Millisecond,
	})
}

func NewKafkaProducer(c *config.Config) *kafka.Producer {
	if len(c.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.OpLogTopic})
}

func NewEtcd(c *config.Config) (*etcd.Client, error) {
	if len(c.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

func NewJWTManager(c *config.Config) *jwtsec.Manager {
	return jwtsec.NewManager(c.JWT.Secret, c.JWT.ExpireSeconds, c.JWT.Issuer)
}

// Caches Shared 跨实例一致（会话、权限、菜单树）；Config 允许本地 L1 短暂滞后
type Caches struct {
	Shared cache.Cache
	Config cache.Cache
}

func ProvideCaches(r *redisrepo.Client) Caches {
	if r == nil {
		local := cache.New()
		return Caches{Shared: local, Config: local}
	}
	l2 := cache.NewRedisAdapter(r)
	return Caches{Shared: l2, Config: cache.NewLayered(cache.New(), l2)}
}

func ProvidePermissionService(a *dao.AdminDAO, r *dao.RoleDAO, m *dao.MenuDAO, c Caches) *service.PermissionService {
	return service.NewPermissionService(a, r, m, c.Shared)
}

func ProvideMenuService(db *gorm.DB, m *dao.MenuDAO, p *service.PermissionService, c Caches) *service.MenuService {
	return service.NewMenuService(db, m, p, c.Shared)
}

func ProvideAuthService(cfg *config.Config, a *dao.AdminDAO, p *service.PermissionService, j *jwtsec.Manager, c Caches) *service.AuthService {
	return service.NewAuthService(a, p, j, c.Shared, cfg.Redis.JTIPrefix)
}

func ProvideConfigService(d *dao.ConfigDAO, c Caches) *service.ConfigService {
	return service.NewConfigService(d, c.Config)
}

// ProvideAsyncSender 只有配置了 Kafka 才创建；Start 在 NewApp 里调用
func ProvideAsyncSender(c *config.Config, l *logging.Logger, p *kafka.Producer) *kafka.AsyncSender {
	if p == nil {
		return nil
	}
	return kafka.NewAsyncSender(p, l.Logger, c.Kafka.QueueSize, c.Kafka.Workers, c.Kafka.MaxBatch,
		time.Duration(c.Kafka.MaxWaitMS)*time.Millisecond)
}

// ProvideAuditSink 有 Kafka 走异步投递，否则直接写库
func ProvideAuditSink(s *kafka.AsyncSender, d *dao.OperationLogDAO) audit.Sink {
	if s != nil {
		return audit.NewKafkaSink(s)
	}
	return audit.NewDBSink(d)
}

func ProvideLimiter(r *redisrepo.Client) sec.Limiter {
	if r == nil {
		return nil
	}
	return r
}

func ProvideHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client) *httpSrv.HealthChecker {
	return httpSrv.NewHealthChecker(db, r, p, e)
}

func ProvideRouter(c *config.Config, l *logging.Logger, d adminh.Dependencies, perm *service.PermissionService,
	sink audit.Sink, lim sec.Limiter, hc *httpSrv.HealthChecker) *gin.Engine {
	return httpSrv.NewRouter(httpSrv.RouterDeps{
		Config:   c,
		Logger:   l,
		Services: d,
		Perm:     perm,
		Sink:     sink,
		Limiter:  lim,
		Health:   hc,
	})
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	NewEtcd,
	NewJWTManager,
	ProvideCaches,
	// DAO
	dao.NewAdminDAO,
	dao.NewRoleDAO,
	dao.NewMenuDAO,
	dao.NewConfigDAO,
	dao.NewOperationLogDAO,
	// Service
	ProvidePermissionService,
	ProvideMenuService,
	ProvideAuthService,
	ProvideConfigService,
	service.NewAdminService,
	service.NewRoleService,
	service.NewOperationLogService,
	wire.Struct(new(adminh.Dependencies), "*"),
	// HTTP
	ProvideAsyncSender,
	ProvideAuditSink,
	ProvideLimiter,
	ProvideHealthChecker,
	ProvideRouter,
	NewApp,
)
