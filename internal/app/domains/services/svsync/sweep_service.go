package svsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/domains/modules/mdstatus"
	"ofs/fulfillsync/internal/app/domains/repo/rpaudit"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// 候选枚举的单页大小
const sweepPageSize = 50

// SweepConfig 巡检配置
type SweepConfig struct {
	AttentionStatus string        // 第一轮候选状态（需要发货关注的订单，不限时间窗口）
	LookbackWindow  time.Duration // 第二轮 processing 订单的回看窗口
	MaxOrders       int           // 单次巡检候选上限
}

// SweepService 巡检服务
// 枚举候选商城订单并逐个对账，单个订单失败不中断整批
type SweepService struct {
	commerce    CommerceGateway
	fulfillment FulfillmentGateway
	reconciler  *ReconcileService
	cfg         SweepConfig
	logger      logger.Logger
}

// NewSweepService 创建巡检服务
func NewSweepService(
	commerceGW CommerceGateway,
	fulfillment FulfillmentGateway,
	reconciler *ReconcileService,
	cfg SweepConfig,
	log logger.Logger,
) *SweepService {
	if cfg.MaxOrders <= 0 {
		cfg.MaxOrders = 200
	}
	if cfg.AttentionStatus == "" {
		cfg.AttentionStatus = "shipping-attention"
	}
	return &SweepService{
		commerce:    commerceGW,
		fulfillment: fulfillment,
		reconciler:  reconciler,
		cfg:         cfg,
		logger:      log,
	}
}

// Sweep 执行一次完整巡检
// 逐个处理候选，归约出不可变的汇总记录；任何单个订单的失败只累计计数。
// 候选枚举失败以 error 返回，已枚举到的候选仍照常处理
func (s *SweepService) Sweep(ctx context.Context) (*etsync.SweepSummary, error) {
	sweepID := uuid.New().String()
	ctx = logger.WithSweepID(ctx, sweepID)

	startedAt := time.Now()
	s.logger.Infof(ctx, "[Sweep] started")

	candidates, enumErr := s.enumerateCandidates(ctx)
	s.logger.Infof(ctx, "[Sweep] candidates enumerated: count=%d", len(candidates))

	summary := etsync.SweepSummary{
		SweepID:   sweepID,
		StartedAt: startedAt,
	}
	for _, candidate := range candidates {
		summary.Processed++

		outcome, err := s.reconcileCandidate(ctx, candidate)
		switch {
		case err != nil:
			summary.Failed++
			s.logger.Warnf(ctx, "[Sweep] candidate failed: order_id=%d number=%s error=%v", candidate.ID, candidate.Number, err)
		case outcome == nil:
			// 履约平台不认识该订单号：算 missing，不算失败
			summary.Missing++
			s.logger.Debugf(ctx, "[Sweep] no fulfillment record: order_id=%d number=%s", candidate.ID, candidate.Number)
		case outcome.Changed:
			summary.Updated++
		}
	}

	summary.FinishedAt = time.Now()
	s.logger.Infof(ctx, "[Sweep] finished: processed=%d updated=%d missing=%d failed=%d duration=%s",
		summary.Processed, summary.Updated, summary.Missing, summary.Failed, summary.FinishedAt.Sub(summary.StartedAt))

	return &summary, enumErr
}

// enumerateCandidates 两轮枚举候选订单
// 第一轮：关注状态的全部订单（正是容易卡住的那批，不限时间）
// 第二轮：回看窗口内更新过的 processing 订单
// 按订单ID去重，总量封顶。某轮枚举失败不影响另一轮，错误合并返回
func (s *SweepService) enumerateCandidates(ctx context.Context) ([]*etsync.CommerceOrderSnapshot, error) {
	seen := make(map[int64]bool)
	candidates := make([]*etsync.CommerceOrderSnapshot, 0, s.cfg.MaxOrders)
	var enumErr error

	collect := func(status string, updatedAfter time.Time) {
		for page := 1; len(candidates) < s.cfg.MaxOrders; page++ {
			orders, err := s.commerce.ListOrders(ctx, status, updatedAfter, page, sweepPageSize)
			if err != nil {
				s.logger.Warnf(ctx, "[Sweep] enumerate failed: status=%s page=%d error=%v", status, page, err)
				enumErr = errors.Join(enumErr, fmt.Errorf("enumerate %s orders page %d: %w", status, page, err))
				return
			}
			if len(orders) == 0 {
				return
			}
			for _, o := range orders {
				if seen[o.ID] {
					continue
				}
				seen[o.ID] = true
				candidates = append(candidates, o)
				if len(candidates) >= s.cfg.MaxOrders {
					return
				}
			}
			if len(orders) < sweepPageSize {
				return
			}
		}
	}

	collect(s.cfg.AttentionStatus, time.Time{})
	collect(mdstatus.CommerceStatusProcessing, time.Now().Add(-s.cfg.LookbackWindow))

	return candidates, enumErr
}

// reconcileCandidate 对账单个候选
// 返回 (nil, nil) 表示履约平台没有该订单的记录
// panic 被吞掉并转为错误，保证巡检继续
func (s *SweepService) reconcileCandidate(ctx context.Context, candidate *etsync.CommerceOrderSnapshot) (result *etsync.CommerceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic while reconciling order %d: %v", candidate.ID, r)
		}
	}()

	ctx = logger.WithOrderID(ctx, candidate.ID)

	shipment, err := s.fulfillment.FetchOrderStatus(ctx, candidate.Number)
	if err != nil {
		return nil, err
	}
	if shipment == nil || shipment.Status == "" {
		return nil, nil
	}

	// 守卫判定前重新拉取快照：枚举到这里之间订单可能已被他方修改
	snapshot, err := s.commerce.GetOrder(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}

	return s.reconciler.ApplyShipment(ctx, snapshot, shipment, rpaudit.TriggerSweep)
}
