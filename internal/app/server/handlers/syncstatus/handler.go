package syncstatus

import (
	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/config"
	"ofs/fulfillsync/internal/app/poller"
	"ofs/fulfillsync/internal/app/pkg/ginx"
)

// SyncStatusHandler 巡检状态查询处理器（运维可观测接口）
type SyncStatusHandler struct {
	tracker *poller.Tracker
	cfg     *config.Config
}

// NewSyncStatusHandler 创建状态查询处理器实例
func NewSyncStatusHandler(tracker *poller.Tracker, cfg *config.Config) *SyncStatusHandler {
	return &SyncStatusHandler{
		tracker: tracker,
		cfg:     cfg,
	}
}

// Get 查询巡检状态与生效配置
// GET /api/v1/sync/status
func (h *SyncStatusHandler) Get(c *gin.Context) {
	ginx.Success(c, gin.H{
		"job":    h.tracker.Snapshot(),
		"config": h.effectiveConfig(),
	})
}

// effectiveConfig 当前生效的巡检配置（不含密钥）
func (h *SyncStatusHandler) effectiveConfig() gin.H {
	return gin.H{
		"enabled":          h.cfg.SweepEnabled(),
		"interval":         h.cfg.Sync.Interval.String(),
		"lookback_days":    h.cfg.Sync.LookbackDays,
		"max_orders":       h.cfg.Sync.MaxOrders,
		"attention_status": h.cfg.Sync.AttentionStatus,
	}
}
