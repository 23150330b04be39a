package security

import (
	"context"
	"time"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter 固定窗口计数，redisrepo.Client 实现
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LoginRateLimit 按客户端 IP 限制登录次数；limit<=0 或 Limiter 为空时不限制。
// Redis 不可用时放行并记日志。
func LoginRateLimit(l Limiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || limit <= 0 {
			c.Next()
			return
		}
		ok, err := l.Allow(c.Request.Context(), "ratelimit:login:"+c.ClientIP(), limit, time.Minute)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("login_rate_limit_unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			metrics.LoginTotal.WithLabelValues("rate_limited").Inc()
			response.Fail(c, apperr.New(apperr.KindTooMany, "登录过于频繁，请稍后再试"))
			return
		}
		c.Next()
	}
}
