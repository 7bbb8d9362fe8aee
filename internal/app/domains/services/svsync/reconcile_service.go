package svsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/domains/modules/mdstatus"
	"ofs/fulfillsync/internal/app/domains/repo/rpaudit"
	"ofs/fulfillsync/internal/app/infra/commerce"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// ReconcileService 对账执行器
// 编排一次完整对账：拉最新履约状态 → 解析身份 → 取商城快照 →
// 守卫判定 → 合并更新 → 追加备注（尽力而为）→ 落审计（尽力而为）
type ReconcileService struct {
	fulfillment FulfillmentGateway
	resolver    IdentityResolver
	commerce    CommerceGateway
	auditRepo   rpaudit.AuditRepository // 可为 nil
	logger      logger.Logger
}

// NewReconcileService 创建对账执行器
func NewReconcileService(
	fulfillment FulfillmentGateway,
	resolver IdentityResolver,
	commerceGW CommerceGateway,
	auditRepo rpaudit.AuditRepository,
	log logger.Logger,
) *ReconcileService {
	return &ReconcileService{
		fulfillment: fulfillment,
		resolver:    resolver,
		commerce:    commerceGW,
		auditRepo:   auditRepo,
		logger:      log,
	}
}

// Reconcile 执行一次对账
// 身份解析失败返回 *errorx.IdentityUnresolvedError；
// 解析出的ID在商城侧不存在返回 errorx.ErrCommerceOrderNotFound
func (s *ReconcileService) Reconcile(ctx context.Context, req *etsync.SyncRequest, trigger string) (*etsync.ReconciliationOutcome, error) {
	if !req.HasIdentifier() {
		return nil, errorx.ErrMissingIdentifier
	}

	// 1. 有订单号时主动拉取最新履约状态，回调字段只作兜底
	// 回调载荷到达处理时可能已过期，实时数据优先
	shipment := s.fetchLiveShipment(ctx, req)

	// 2. 用最新的订单号/ID/键解析商城订单身份
	resolveReq := s.freshestRequest(req, shipment)
	identity, err := s.resolver.Resolve(ctx, resolveReq)
	if err != nil {
		s.appendAudit(ctx, trigger, 0, req.OrderNumber, nil, err)
		return nil, err
	}

	ctx = logger.WithOrderID(ctx, identity.CommerceOrderID)

	// 3. 取商城订单快照（每次对账前重新拉取，绝不复用旧快照）
	snapshot, err := s.commerce.GetOrder(ctx, identity.CommerceOrderID)
	if err != nil {
		s.appendAudit(ctx, trigger, identity.CommerceOrderID, req.OrderNumber, nil, err)
		return nil, fmt.Errorf("fetch commerce order %d: %w", identity.CommerceOrderID, err)
	}

	// 4-6. 守卫判定并应用更新
	result, err := s.ApplyShipment(ctx, snapshot, shipment, trigger)
	if err != nil {
		return nil, err
	}

	return &etsync.ReconciliationOutcome{
		ResolvedIdentity: *identity,
		Fulfillment:      *shipment,
		Commerce:         *result,
	}, nil
}

// ApplyShipment 把履约发货信息应用到商城订单
// 快照必须是刚拉取的新鲜快照；巡检路径也直接复用本方法
func (s *ReconcileService) ApplyShipment(ctx context.Context, snapshot *etsync.CommerceOrderSnapshot, shipment *etsync.FulfillmentShipment, trigger string) (*etsync.CommerceResult, error) {
	nextStatus := mdstatus.MapFulfillmentStatus(shipment.Status)
	apply := mdstatus.ShouldApply(snapshot.Status, nextStatus)

	result := &etsync.CommerceResult{
		PreviousStatus: snapshot.Status,
		NextStatus:     nextStatus,
	}

	// 守卫不放行就不碰上游：终态订单一个字节都不写
	if !apply {
		s.logger.Debugf(ctx, "[Reconcile] guard rejected update: order_id=%d current=%s next=%s",
			snapshot.ID, snapshot.Status, nextStatus)
		s.appendAuditOutcome(ctx, trigger, snapshot, result)
		return result, nil
	}

	updateReq := &commerce.UpdateRequest{
		OrderID:          snapshot.ID,
		CurrentStatus:    snapshot.Status,
		NextStatus:       nextStatus,
		TrackingNumber:   shipment.TrackingNumber,
		CarrierCode:      shipment.CarrierCode,
		ShipDate:         shipment.ShipDate,
		ExistingMetadata: snapshot.Metadata,
	}

	updateResult, err := s.commerce.ApplyFulfillmentUpdate(ctx, updateReq)
	if err != nil {
		s.appendAudit(ctx, trigger, snapshot.ID, snapshot.Number, result, err)
		return nil, err
	}

	result.Updated = true
	result.Changed = updateResult.Changed

	// 状态更新是主效果，备注只是尽力而为
	if result.Changed {
		if err := s.commerce.AddOrderNote(ctx, snapshot.ID, buildNote(shipment), false); err != nil {
			s.logger.Warnf(ctx, "[Reconcile] append order note failed: order_id=%d error=%v", snapshot.ID, err)
		}
	}

	s.logger.Infof(ctx, "[Reconcile] done: order_id=%d prev=%s next=%s updated=%v changed=%v",
		snapshot.ID, result.PreviousStatus, result.NextStatus, result.Updated, result.Changed)

	s.appendAuditOutcome(ctx, trigger, snapshot, result)
	return result, nil
}

// fetchLiveShipment 拉取最新履约状态；失败时告警并回退到回调字段
func (s *ReconcileService) fetchLiveShipment(ctx context.Context, req *etsync.SyncRequest) *etsync.FulfillmentShipment {
	fallback := &etsync.FulfillmentShipment{
		Status:         req.FulfillmentStatus,
		TrackingNumber: req.TrackingNumber,
		CarrierCode:    req.CarrierCode,
		ShipDate:       req.ShipDate,
		OrderID:        req.FulfillmentOrderID,
		OrderKey:       req.FulfillmentOrderKey,
	}

	if req.OrderNumber == "" || s.fulfillment == nil {
		return fallback
	}

	live, err := s.fulfillment.FetchOrderStatus(ctx, req.OrderNumber)
	if err != nil {
		lookupErr := &errorx.FulfillmentLookupError{OrderNumber: req.OrderNumber, Err: err}
		s.logger.Warnf(ctx, "[Reconcile] %v, falling back to payload fields", lookupErr)
		return fallback
	}
	if live == nil {
		return fallback
	}

	// 实时数据优先；实时结果缺的字段用回调字段补齐
	if live.TrackingNumber == "" {
		live.TrackingNumber = fallback.TrackingNumber
	}
	if live.CarrierCode == "" {
		live.CarrierCode = fallback.CarrierCode
	}
	if live.ShipDate == "" {
		live.ShipDate = fallback.ShipDate
	}
	if live.OrderID == "" {
		live.OrderID = fallback.OrderID
	}
	if live.OrderKey == "" {
		live.OrderKey = fallback.OrderKey
	}
	return live
}

// freshestRequest 以实时履约数据修正后的解析请求
func (s *ReconcileService) freshestRequest(req *etsync.SyncRequest, shipment *etsync.FulfillmentShipment) *etsync.SyncRequest {
	fresh := *req
	if shipment.OrderID != "" {
		fresh.FulfillmentOrderID = shipment.OrderID
	}
	if shipment.OrderKey != "" {
		fresh.FulfillmentOrderKey = shipment.OrderKey
	}
	return &fresh
}

// buildNote 生成人类可读的订单备注
func buildNote(shipment *etsync.FulfillmentShipment) string {
	parts := []string{fmt.Sprintf("Fulfillment sync: status %q", shipment.Status)}
	if shipment.TrackingNumber != "" {
		parts = append(parts, "tracking "+shipment.TrackingNumber)
	}
	if shipment.CarrierCode != "" {
		parts = append(parts, "carrier "+shipment.CarrierCode)
	}
	if shipment.ShipDate != "" {
		parts = append(parts, "shipped "+shipment.ShipDate)
	}
	return strings.Join(parts, ", ")
}

// appendAuditOutcome 落成功审计（尽力而为）
func (s *ReconcileService) appendAuditOutcome(ctx context.Context, trigger string, snapshot *etsync.CommerceOrderSnapshot, result *etsync.CommerceResult) {
	if s.auditRepo == nil {
		return
	}

	outcomeJSON, _ := json.Marshal(result)
	audit := &rpaudit.SyncAudit{
		TriggerSource:   trigger,
		CommerceOrderID: snapshot.ID,
		OrderNumber:     snapshot.Number,
		PreviousStatus:  result.PreviousStatus,
		NextStatus:      result.NextStatus,
		Changed:         result.Changed,
		Outcome:         outcomeJSON,
	}
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		s.logger.Warnf(ctx, "[Reconcile] append audit failed: order_id=%d error=%v", snapshot.ID, err)
	}
}

// appendAudit 落失败审计（尽力而为）
func (s *ReconcileService) appendAudit(ctx context.Context, trigger string, orderID int64, orderNumber string, result *etsync.CommerceResult, cause error) {
	if s.auditRepo == nil {
		return
	}

	audit := &rpaudit.SyncAudit{
		TriggerSource:   trigger,
		CommerceOrderID: orderID,
		OrderNumber:     orderNumber,
		ErrorMessage:    cause.Error(),
	}
	if result != nil {
		audit.PreviousStatus = result.PreviousStatus
		audit.NextStatus = result.NextStatus
	}
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		s.logger.Warnf(ctx, "[Reconcile] append audit failed: error=%v", err)
	}
}
