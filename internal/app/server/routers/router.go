package routers

import (
	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/pkg/logger"
	"ofs/fulfillsync/internal/app/server/handlers/reconcile"
	"ofs/fulfillsync/internal/app/server/handlers/syncstatus"
	"ofs/fulfillsync/internal/app/server/handlers/webhook"
	"ofs/fulfillsync/internal/app/server/middlewares"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	webhookHandler *webhook.WebhookHandler,
	syncStatusHandler *syncstatus.SyncStatusHandler,
	reconcileHandler *reconcile.ReconcileHandler,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.CORS())
	r.Use(middlewares.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fulfillsync",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/fulfillment", webhookHandler.Receive)
		}

		sync := v1.Group("/sync")
		{
			sync.GET("/status", syncStatusHandler.Get)
			sync.POST("/reconcile", reconcileHandler.Trigger)
		}
	}

	return r
}
