package security

import (
	"context"
	"strings"

	"go-rbacadmin/internal/apperr"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/security/jwt"
	"go-rbacadmin/internal/server/http/middleware"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator 由 service.AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

// Auth 校验 Bearer token（签名、过期、JTI 会话），通过后写入 admin_id / username / jti
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" {
			response.Fail(c, apperr.Unauthorized("未登录或登录已过期"))
			return
		}
		claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}
		c.Set(middleware.KeyAdminID, claims.AdminID)
		c.Set(middleware.KeyUsername, claims.Username)
		c.Set(middleware.KeyJTI, claims.JTI())

		ctx := logging.WithAdminID(c.Request.Context(), claims.AdminID)
		lg := logging.FromContext(ctx).With(zap.Int64("admin_id", claims.AdminID))
		c.Request = c.Request.WithContext(logging.IntoContext(ctx, lg))
		c.Next()
	}
}

func bearer(h string) string {
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
