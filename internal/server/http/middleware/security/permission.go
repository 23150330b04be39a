package security

import (
	"context"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker 由 service.PermissionService 实现
type Checker interface {
	HasPermission(ctx context.Context, adminID int64, perm string) (bool, error)
}

// Require 必须挂在 Auth 之后；perm 为空只要求登录
func Require(p Checker, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := middleware.AdminID(c)
		if adminID <= 0 {
			response.Fail(c, apperr.Unauthorized("未登录或登录已过期"))
			return
		}
		if perm == "" {
			c.Next()
			return
		}
		ok, err := p.HasPermission(c.Request.Context(), adminID, perm)
		if err != nil {
			response.Fail(c, err)
			return
		}
		if !ok {
			metrics.PermissionDenied.WithLabelValues(perm).Inc()
			logging.FromContext(c.Request.Context()).Info("permission_denied", zap.String("permission", perm), zap.String("path", c.FullPath()))
			response.Fail(c, apperr.Forbidden("没有操作权限"))
			return
		}
		c.Next()
	}
}
