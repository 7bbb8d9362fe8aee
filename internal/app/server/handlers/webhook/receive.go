package webhook

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/domains/repo/rpaudit"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/ginx"
	"ofs/fulfillsync/internal/app/pkg/webhookparse"
)

// maxBodySize 回调载荷大小上限
const maxBodySize = 1 << 20

// Receive 接收履约平台回调
// POST /api/v1/webhooks/fulfillment
//
// 认证失败直接拒绝；认证通过后，解析失败或缺少订单标识一律返回
// 200 + skipped，避免发送方对无法协商的载荷无限重试
func (h *WebhookHandler) Receive(c *gin.Context) {
	if !h.authenticate(c) {
		ginx.Unauthorized(c, "invalid webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		h.logger.Warnf(c.Request.Context(), "[Webhook] read body failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": true, "reason": "unreadable_body"})
		return
	}

	req := webhookparse.Parse(body, c.ContentType())
	if !req.HasIdentifier() {
		h.logger.Infof(c.Request.Context(), "[Webhook] payload without order identifier, acknowledged and skipped")
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": true, "reason": "missing_order_identifier"})
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), req, rpaudit.TriggerWebhook)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": outcome})
}

// authenticate 共享密钥校验（常量时间比较），支持请求头或查询参数
func (h *WebhookHandler) authenticate(c *gin.Context) bool {
	provided := c.GetHeader("X-Webhook-Secret")
	if provided == "" {
		provided = c.Query("secret")
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}

// respondError 认证之后的失败都要有明确响应，绝不静默丢弃
func (h *WebhookHandler) respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var unresolved *errorx.IdentityUnresolvedError
	switch {
	case errors.As(err, &unresolved):
		h.logger.Warnf(ctx, "[Webhook] %v", err)
		ginx.NotFound(c, err.Error())
	case errors.Is(err, errorx.ErrCommerceOrderNotFound):
		h.logger.Warnf(ctx, "[Webhook] %v", err)
		ginx.NotFound(c, err.Error())
	default:
		h.logger.Errorf(ctx, "[Webhook] reconcile failed: %v", err)
		ginx.BadGateway(c, err.Error())
	}
}
