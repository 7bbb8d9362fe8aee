package rpaudit

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// SyncAudit 对账审计记录
// 每次对账（Webhook 或巡检触发）落一行，便于人工回溯重放
type SyncAudit struct {
	ID              int64          `gorm:"column:id;primaryKey;autoIncrement"`
	TriggerSource   string         `gorm:"column:trigger_source;type:varchar(16);not null"`
	CommerceOrderID int64          `gorm:"column:commerce_order_id;index:idx_commerce_order"`
	OrderNumber     string         `gorm:"column:order_number;type:varchar(128)"`
	PreviousStatus  string         `gorm:"column:previous_status;type:varchar(32)"`
	NextStatus      string         `gorm:"column:next_status;type:varchar(32)"`
	Changed         bool           `gorm:"column:changed"`
	Outcome         datatypes.JSON `gorm:"column:outcome;type:json"`
	ErrorMessage    string         `gorm:"column:error_message;type:varchar(512)"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
}

// TableName 指定表名
func (SyncAudit) TableName() string {
	return "sync_audits"
}

// 触发来源
const (
	TriggerWebhook = "webhook"
	TriggerSweep   = "sweep"
	TriggerManual  = "manual"
)

// AuditRepository 审计仓储接口
type AuditRepository interface {
	// Append 追加一条审计记录
	Append(ctx context.Context, audit *SyncAudit) error
}
