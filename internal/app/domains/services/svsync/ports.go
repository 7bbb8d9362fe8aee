package svsync

import (
	"context"
	"time"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/infra/commerce"
)

// CommerceGateway 商城平台能力（infra/commerce.Client 实现）
type CommerceGateway interface {
	GetOrder(ctx context.Context, orderID int64) (*etsync.CommerceOrderSnapshot, error)
	ListOrders(ctx context.Context, status string, updatedAfter time.Time, page, perPage int) ([]*etsync.CommerceOrderSnapshot, error)
	ApplyFulfillmentUpdate(ctx context.Context, req *commerce.UpdateRequest) (*commerce.UpdateResult, error)
	AddOrderNote(ctx context.Context, orderID int64, note string, customerVisible bool) error
}

// FulfillmentGateway 履约平台能力（infra/fulfillment.Client 实现）
type FulfillmentGateway interface {
	FetchOrderStatus(ctx context.Context, orderNumber string) (*etsync.FulfillmentShipment, error)
}

// IdentityResolver 身份解析能力（mdresolve.Resolver 实现）
type IdentityResolver interface {
	Resolve(ctx context.Context, req *etsync.SyncRequest) (*etsync.ResolvedIdentity, error)
}
