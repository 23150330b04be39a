package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr           string   `mapstructure:"addr"`
		AllowOrigins   []string `mapstructure:"allow_origins"`
		ReadTimeoutSec int      `mapstructure:"read_timeout_sec"`
	} `mapstructure:"http"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
		LogLevel    string `mapstructure:"log_level"` // silent / error / warn / info
	} `mapstructure:"postgres"`
	Redis struct {
		Addr           string `mapstructure:"addr"`
		Password       string `mapstructure:"password"`
		DB             int    `mapstructure:"db"`
		JTIPrefix      string `mapstructure:"jti_prefix"`
		DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
		ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingTimeoutMS  int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec   int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers       []string `mapstructure:"brokers"`
		OpLogTopic    string   `mapstructure:"op_log_topic"`
		ConsumerGroup string   `mapstructure:"consumer_group"`
		QueueSize     int      `mapstructure:"queue_size"`
		Workers       int      `mapstructure:"workers"`
		MaxBatch      int      `mapstructure:"max_batch"`
		MaxWaitMS     int      `mapstructure:"max_wait_ms"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints     []string `mapstructure:"endpoints"`
		TTL           int      `mapstructure:"ttl"`
		ServicePrefix string   `mapstructure:"service_prefix"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret        string `mapstructure:"secret"`
		ExpireSeconds int    `mapstructure:"expire_seconds"`
		Issuer        string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"` // json / console
		File       string `mapstructure:"file"`   // 为空只输出 stdout
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"`
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
	RateLimit struct {
		LoginPerMinute int `mapstructure:"login_per_minute"`
	} `mapstructure:"rate_limit"`
	Seed struct {
		Enabled       bool   `mapstructure:"enabled"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"seed"`
}

// Load 读取 yaml，APP_ 前缀环境变量覆盖同名 key（如 APP_JWT_SECRET）
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allow_origins", []string{"*"})
	v.SetDefault("http.read_timeout_sec", 15)
	v.SetDefault("postgres.max_open", 10)
	v.SetDefault("postgres.max_idle", 5)
	v.SetDefault("postgres.log_level", "warn")
	v.SetDefault("redis.jti_prefix", "jwt:jti:")
	v.SetDefault("redis.dial_timeout_ms", 2000)
	v.SetDefault("redis.read_timeout_ms", 1000)
	v.SetDefault("redis.write_timeout_ms", 1000)
	v.SetDefault("redis.ping_timeout_ms", 500)
	v.SetDefault("redis.heartbeat_sec", 10)
	v.SetDefault("kafka.op_log_topic", "rbac-admin-oplog")
	v.SetDefault("kafka.consumer_group", "rbac-admin-oplog-consumer")
	v.SetDefault("kafka.queue_size", 10000)
	v.SetDefault("kafka.workers", 2)
	v.SetDefault("kafka.max_batch", 50)
	v.SetDefault("kafka.max_wait_ms", 20)
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("etcd.service_prefix", "/services/rbacadmin")
	v.SetDefault("jwt.expire_seconds", 7*24*3600)
	v.SetDefault("jwt.issuer", "rbac-admin")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("app_meta.name", "RBACAdmin")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
	v.SetDefault("rate_limit.login_per_minute", 10)
	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.admin_password", "admin123")
}

// Validate 逻辑校验
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret too short (>=32)")
	}
	if c.JWT.ExpireSeconds <= 0 {
		return fmt.Errorf("jwt.expire_seconds must >0")
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn required")
	}
	if c.Seed.Enabled && len(c.Seed.AdminPassword) < 6 {
		return errors.New("seed.admin_password must be at least 6 chars when seed.enabled=true")
	}
	if c.RateLimit.LoginPerMinute < 0 {
		return errors.New("rate_limit.login_per_minute must >=0")
	}
	return nil
}
