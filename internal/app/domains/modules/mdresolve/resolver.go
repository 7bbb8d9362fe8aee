package mdresolve

import (
	"context"
	"regexp"
	"strconv"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/domains/repo/rplink"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// orderKeyPattern 商城在订单转发时铸入的键格式：woo-<数字ID>
var orderKeyPattern = regexp.MustCompile(`^woo-(\d+)$`)

// 搜索兜底的翻页上限，避免无界扫描
const (
	maxSearchPages = 3
	searchPageSize = 50
)

// CommerceReader 解析器需要的商城只读能力
type CommerceReader interface {
	GetOrder(ctx context.Context, orderID int64) (*etsync.CommerceOrderSnapshot, error)
	SearchOrders(ctx context.Context, term string, page, perPage int) ([]*etsync.CommerceOrderSnapshot, error)
}

// LocalLinkStore 订单映射的次级本地存储
type LocalLinkStore interface {
	GetCommerceOrderID(ctx context.Context, fulfillmentOrderID string) (int64, error)
	Save(ctx context.Context, fulfillmentOrderID string, commerceOrderID int64) error
}

// Resolver 身份解析模块
// 按固定优先级级联多个查找策略，首个命中即返回；
// 单个策略失败（网络错误、未命中）只记录并继续下一策略
type Resolver struct {
	linkRepo   rplink.LinkRepository
	localStore LocalLinkStore // 可为 nil（未配置 Redis 时）
	commerce   CommerceReader
	logger     logger.Logger
}

// NewResolver 创建身份解析模块
func NewResolver(linkRepo rplink.LinkRepository, localStore LocalLinkStore, commerce CommerceReader, log logger.Logger) *Resolver {
	return &Resolver{
		linkRepo:   linkRepo,
		localStore: localStore,
		commerce:   commerce,
		logger:     log,
	}
}

// strategy 单个解析策略
// 返回 nil 表示未命中，由组合器继续尝试下一个
type strategy struct {
	name string
	fn   func(ctx context.Context, req *etsync.SyncRequest) *etsync.ResolvedIdentity
}

// Resolve 解析商城订单ID
// 全部策略失败时返回 *errorx.IdentityUnresolvedError，携带已尝试策略列表
func (r *Resolver) Resolve(ctx context.Context, req *etsync.SyncRequest) (*etsync.ResolvedIdentity, error) {
	strategies := []strategy{
		{name: string(etsync.SourceOrderKeyEmbedded), fn: r.resolveByEmbeddedKey},
		{name: "external_id_lookup", fn: r.resolveByExternalID},
		{name: string(etsync.SourceNumberEqualsID), fn: r.resolveByNumericID},
		{name: string(etsync.SourceSearchByNumber), fn: r.resolveBySearch},
	}

	tried := make([]string, 0, len(strategies))
	for _, s := range strategies {
		tried = append(tried, s.name)
		identity := s.fn(ctx, req)
		if identity == nil {
			continue
		}

		r.logger.Debugf(ctx, "[Resolver] resolved order: commerce_order_id=%d source=%s", identity.CommerceOrderID, identity.Source)
		r.fillLinkStores(ctx, req, identity)
		return identity, nil
	}

	return nil, &errorx.IdentityUnresolvedError{
		OrderNumber:        req.OrderNumber,
		FulfillmentOrderID: req.FulfillmentOrderID,
		Tried:              tried,
	}
}

// resolveByEmbeddedKey 策略1：订单键内嵌ID
// 键由商城在订单转发时铸入，最快且最可靠，无需任何网络调用
func (r *Resolver) resolveByEmbeddedKey(_ context.Context, req *etsync.SyncRequest) *etsync.ResolvedIdentity {
	m := orderKeyPattern.FindStringSubmatch(req.FulfillmentOrderKey)
	if m == nil {
		return nil
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	return &etsync.ResolvedIdentity{CommerceOrderID: id, Source: etsync.SourceOrderKeyEmbedded}
}

// resolveByExternalID 策略2：按履约订单ID查持久化映射
// 主存储 MySQL 优先，未命中或出错回退本地 Redis 存储
func (r *Resolver) resolveByExternalID(ctx context.Context, req *etsync.SyncRequest) *etsync.ResolvedIdentity {
	if req.FulfillmentOrderID == "" {
		return nil
	}

	if r.linkRepo != nil {
		id, err := r.linkRepo.GetCommerceOrderID(ctx, req.FulfillmentOrderID)
		if err != nil {
			r.logger.Warnf(ctx, "[Resolver] link repo lookup failed: fulfillment_order_id=%s error=%v", req.FulfillmentOrderID, err)
		} else if id > 0 {
			return &etsync.ResolvedIdentity{CommerceOrderID: id, Source: etsync.SourceExternalIDSQL}
		}
	}

	if r.localStore != nil {
		id, err := r.localStore.GetCommerceOrderID(ctx, req.FulfillmentOrderID)
		if err != nil {
			r.logger.Warnf(ctx, "[Resolver] local link store lookup failed: fulfillment_order_id=%s error=%v", req.FulfillmentOrderID, err)
		} else if id > 0 {
			return &etsync.ResolvedIdentity{CommerceOrderID: id, Source: etsync.SourceExternalIDLocal}
		}
	}

	return nil
}

// resolveByNumericID 策略3：纯数字订单号按ID直查
// 数字ID与展示订单号不保证一致，必须比对返回记录自身的订单号
func (r *Resolver) resolveByNumericID(ctx context.Context, req *etsync.SyncRequest) *etsync.ResolvedIdentity {
	if req.OrderNumber == "" || !isDigits(req.OrderNumber) {
		return nil
	}

	id, err := strconv.ParseInt(req.OrderNumber, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	snapshot, err := r.commerce.GetOrder(ctx, id)
	if err != nil {
		r.logger.Debugf(ctx, "[Resolver] numeric id fetch missed: order_number=%s error=%v", req.OrderNumber, err)
		return nil
	}

	if snapshot.Number != req.OrderNumber {
		return nil
	}

	return &etsync.ResolvedIdentity{CommerceOrderID: snapshot.ID, Source: etsync.SourceNumberEqualsID}
}

// resolveBySearch 策略4：订单号搜索兜底（分页且有界）
func (r *Resolver) resolveBySearch(ctx context.Context, req *etsync.SyncRequest) *etsync.ResolvedIdentity {
	if req.OrderNumber == "" {
		return nil
	}

	for page := 1; page <= maxSearchPages; page++ {
		snapshots, err := r.commerce.SearchOrders(ctx, req.OrderNumber, page, searchPageSize)
		if err != nil {
			r.logger.Warnf(ctx, "[Resolver] order search failed: order_number=%s page=%d error=%v", req.OrderNumber, page, err)
			return nil
		}
		if len(snapshots) == 0 {
			return nil
		}

		for _, s := range snapshots {
			if s.Number == req.OrderNumber {
				return &etsync.ResolvedIdentity{CommerceOrderID: s.ID, Source: etsync.SourceSearchByNumber}
			}
		}

		if len(snapshots) < searchPageSize {
			return nil
		}
	}

	return nil
}

// fillLinkStores 回填映射存储
// 非映射来源的成功解析顺手落映射，让后续请求走策略2快路径；失败忽略
func (r *Resolver) fillLinkStores(ctx context.Context, req *etsync.SyncRequest, identity *etsync.ResolvedIdentity) {
	if req.FulfillmentOrderID == "" {
		return
	}
	if identity.Source == etsync.SourceExternalIDSQL || identity.Source == etsync.SourceExternalIDLocal {
		return
	}

	if r.linkRepo != nil {
		if err := r.linkRepo.Save(ctx, req.FulfillmentOrderID, identity.CommerceOrderID); err != nil {
			r.logger.Debugf(ctx, "[Resolver] link repo fill failed: %v", err)
		}
	}
	if r.localStore != nil {
		if err := r.localStore.Save(ctx, req.FulfillmentOrderID, identity.CommerceOrderID); err != nil {
			r.logger.Debugf(ctx, "[Resolver] local link store fill failed: %v", err)
		}
	}
}

// isDigits 是否纯数字
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
