package rplink

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepositoryImpl 订单映射仓储实现（MySQL）
type LinkRepositoryImpl struct {
	db *gorm.DB
}

// NewLinkRepository 创建订单映射仓储实例
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{db: db}
}

// GetCommerceOrderID 按履约订单ID查映射
func (r *LinkRepositoryImpl) GetCommerceOrderID(ctx context.Context, fulfillmentOrderID string) (int64, error) {
	var link OrderLink
	err := r.db.WithContext(ctx).
		Where("fulfillment_order_id = ?", fulfillmentOrderID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return link.CommerceOrderID, nil
}

// Save 写入或更新映射（幂等 upsert）
func (r *LinkRepositoryImpl) Save(ctx context.Context, fulfillmentOrderID string, commerceOrderID int64) error {
	now := time.Now()
	link := OrderLink{
		FulfillmentOrderID: fulfillmentOrderID,
		CommerceOrderID:    commerceOrderID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fulfillment_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"commerce_order_id", "updated_at"}),
		}).
		Create(&link).Error
}
