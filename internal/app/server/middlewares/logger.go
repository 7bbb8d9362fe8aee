package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ofs/fulfillsync/internal/app/pkg/logger"
)

// RequestLogger 请求日志中间件
// 为每个请求生成 trace_id 并注入 Context，供下游日志关联
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()
		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		c.Next()

		log.Infof(ctx, "[HTTP] %s %s status=%d duration=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
