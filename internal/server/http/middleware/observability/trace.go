package observability

import (
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/server/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const TraceHeader = "X-Trace-Id"

// Trace 透传或生成 X-Trace-Id，并开启 server span
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" || len(traceID) > 64 {
			traceID = uuid.NewString()
		}
		c.Set(middleware.KeyTraceID, traceID)
		c.Writer.Header().Set(TraceHeader, traceID)

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx = logging.WithTraceID(ctx, traceID)
		spanName := c.FullPath()
		if spanName == "" {
			spanName = c.Request.Method
		}
		ctx, span := otel.Tracer("http-server").Start(ctx, spanName,
			oteltrace.WithSpanKind(oteltrace.SpanKindServer),
			oteltrace.WithAttributes(attribute.String("custom.trace_id", traceID), attribute.String("http.method", c.Request.Method)))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
