package reconcile

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/domains/repo/rpaudit"
	"ofs/fulfillsync/internal/app/domains/services/svsync"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/ginx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// ReconcileHandler 手动对账处理器
// 运维补偿入口：回调丢失或巡检漏网时，按订单号手动触发一次对账
type ReconcileHandler struct {
	reconciler *svsync.ReconcileService
	logger     logger.Logger
}

// NewReconcileHandler 创建手动对账处理器实例
func NewReconcileHandler(reconciler *svsync.ReconcileService, log logger.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		reconciler: reconciler,
		logger:     log,
	}
}

// reconcileRequest 手动对账请求
type reconcileRequest struct {
	OrderNumber         string `json:"order_number" binding:"required,min=1,max=128"`
	FulfillmentOrderID  string `json:"fulfillment_order_id" binding:"omitempty,max=64"`
	FulfillmentOrderKey string `json:"fulfillment_order_key" binding:"omitempty,max=64"`
}

// Trigger 手动触发单个订单的对账
// POST /api/v1/sync/reconcile
func (h *ReconcileHandler) Trigger(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), &etsync.SyncRequest{
		OrderNumber:         req.OrderNumber,
		FulfillmentOrderID:  req.FulfillmentOrderID,
		FulfillmentOrderKey: req.FulfillmentOrderKey,
	}, rpaudit.TriggerManual)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ginx.Success(c, outcome)
}

// respondError 手动触发的失败要有明确响应，便于运维判断下一步
func (h *ReconcileHandler) respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var unresolved *errorx.IdentityUnresolvedError
	switch {
	case errors.As(err, &unresolved):
		h.logger.Warnf(ctx, "[Reconcile] %v", err)
		ginx.NotFound(c, err.Error())
	case errors.Is(err, errorx.ErrCommerceOrderNotFound):
		h.logger.Warnf(ctx, "[Reconcile] %v", err)
		ginx.NotFound(c, err.Error())
	default:
		h.logger.Errorf(ctx, "[Reconcile] manual reconcile failed: %v", err)
		ginx.BadGateway(c, err.Error())
	}
}
