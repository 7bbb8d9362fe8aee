package middlewares

import (
	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/pkg/ginx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// Recovery 恐慌恢复中间件
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %v", r)
				ginx.InternalError(c, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
