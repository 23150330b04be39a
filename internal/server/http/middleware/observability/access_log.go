package observability

import (
	"time"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/server/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var skipAccessLog = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// AccessLog 请求结束后输出 http_access；5xx 记 error
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := skipAccessLog[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := middleware.AdminID(c); id > 0 {
			fields = append(fields, zap.Int64("admin_id", id))
		}
		lg := logging.FromContext(c.Request.Context())
		if status >= 500 {
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("error", c.Errors.String()))
			}
			lg.Error("http_access", fields...)
			return
		}
		lg.Info("http_access", fields...)
	}
}
