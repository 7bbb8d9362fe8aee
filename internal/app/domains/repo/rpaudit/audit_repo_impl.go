package rpaudit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// AuditRepositoryImpl 审计仓储实现（MySQL）
type AuditRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计仓储实例
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

// Append 追加一条审计记录
func (r *AuditRepositoryImpl) Append(ctx context.Context, audit *SyncAudit) error {
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(audit).Error
}
