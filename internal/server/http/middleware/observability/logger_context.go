package observability

import (
	"go-rbacadmin/internal/logging"

	"github.com/gin-gonic/gin"
)

// LoggerContext 把带 trace_id 的 logger 放进请求 context，
// handler / service 通过 logging.FromContext 取用。admin_id 由 Auth 追加。
func LoggerContext(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logging.IntoContext(ctx, base.WithContext(ctx)))
		c.Next()
	}
}
