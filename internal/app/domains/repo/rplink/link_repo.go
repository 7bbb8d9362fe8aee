package rplink

import (
	"context"
	"time"
)

// OrderLink 履约订单与商城订单的持久化映射
type OrderLink struct {
	FulfillmentOrderID string    `gorm:"column:fulfillment_order_id;primaryKey;type:varchar(64)"`
	CommerceOrderID    int64     `gorm:"column:commerce_order_id;not null;index:idx_commerce_order"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (OrderLink) TableName() string {
	return "order_links"
}

// LinkRepository 订单映射仓储接口（只定义，不实现）
// 主存储为 MySQL，本地次级存储见 infra/persistence/redis
type LinkRepository interface {
	// GetCommerceOrderID 按履约订单ID查映射；未找到返回 0, nil
	GetCommerceOrderID(ctx context.Context, fulfillmentOrderID string) (int64, error)

	// Save 写入或更新映射
	Save(ctx context.Context, fulfillmentOrderID string, commerceOrderID int64) error
}
