package webhook

import (
	"ofs/fulfillsync/internal/app/domains/services/svsync"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// WebhookHandler 履约回调 HTTP 处理器
type WebhookHandler struct {
	reconciler *svsync.ReconcileService
	secret     string
	logger     logger.Logger
}

// NewWebhookHandler 创建回调处理器实例
func NewWebhookHandler(reconciler *svsync.ReconcileService, secret string, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		secret:     secret,
		logger:     log,
	}
}
