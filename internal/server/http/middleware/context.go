package middleware

import "github.com/gin-gonic/gin"

// gin.Context 上的请求级键
const (
	KeyTraceID  = "trace_id"
	KeyAdminID  = "admin_id"
	KeyUsername = "username"
	KeyJTI      = "jti"
)

// AdminID 未登录时为 0
func AdminID(c *gin.Context) int64 { return c.GetInt64(KeyAdminID) }

func Username(c *gin.Context) string { return c.GetString(KeyUsername) }

func JTI(c *gin.Context) string { return c.GetString(KeyJTI) }
