package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"go-rbacadmin/internal/audit"
	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/server/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 请求体完整读入后再脱敏，超过上限的不记录内容
	maxAuditBody = 64 << 10
	maxAuditResp = 4096
)

// AuditEntry 路由级的审计描述
type AuditEntry struct {
	Module      string
	Operation   string // create / update / delete / ...
	Description string
}

// Audit 在 handler 执行完后写一条操作日志；写失败只记日志，不影响响应
func Audit(sink audit.Sink, e AuditEntry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil {
			c.Next()
			return
		}
		start := time.Now()
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}
		params := audit.SanitizeParams(body)
		if len(body) > maxAuditBody {
			params = audit.OmittedBody
		}
		bw := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()

		rec := &model.SysOperationLog{
			AdminID:       middleware.AdminID(c),
			AdminName:     middleware.Username(c),
			Module:        e.Module,
			Operation:     e.Operation,
			Description:   e.Description,
			RequestMethod: c.Request.Method,
			RequestURL:    truncate(c.Request.URL.RequestURI(), 255),
			RequestParams: params,
			IP:            c.ClientIP(),
			UserAgent:     truncate(c.Request.UserAgent(), 255),
			ExecutionTime: time.Since(start).Milliseconds(),
			Status:        1,
			CreatedAt:     start,
		}
		if c.Writer.Status() >= 400 {
			rec.Status = 0
			rec.ErrorMsg = errorMessage(bw.buf.Bytes(), c)
		}
		if err := sink.Write(c.Request.Context(), rec); err != nil {
			logging.FromContext(c.Request.Context()).Warn("audit_write_failed",
				zap.String("module", e.Module), zap.String("operation", e.Operation), zap.Error(err))
		}
	}
}

type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	if remain := maxAuditResp - w.buf.Len(); remain > 0 {
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// errorMessage 优先取错误响应体里的 message，其次 gin 上挂的错误
func errorMessage(resp []byte, c *gin.Context) string {
	var eb struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(resp, &eb) == nil && eb.Message != "" {
		return eb.Message
	}
	if len(c.Errors) > 0 {
		return c.Errors.Last().Error()
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
