package observability

import (
	"strconv"
	"time"

	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

const superAdminID int64 = 1

// Metrics 按路由模板统计；未匹配的路由归到 unmatched，避免路径基数膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.Inflight.Inc()
		defer metrics.Inflight.Dec()
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status()), caller(c)).Inc()
		if code := c.GetString(response.KeyErrorCode); code != "" {
			metrics.APIErrorsTotal.WithLabelValues(path, code).Inc()
		}
	}
}

// caller 鉴权中间件写入的管理员 id 决定调用方类别
func caller(c *gin.Context) string {
	switch id := middleware.AdminID(c); {
	case id == 0:
		return "anonymous"
	case id == superAdminID:
		return "super"
	default:
		return "admin"
	}
}
