package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

// Sweeper 巡检执行能力（svsync.SweepService 实现）
// 返回的 error 是候选枚举失败，汇总仍然有效（只含枚举到的部分）
type Sweeper interface {
	Sweep(ctx context.Context) (*etsync.SweepSummary, error)
}

// Scheduler 巡检调度器
// 启动后立刻跑一次，之后按固定间隔触发；
// 进程内同时只允许一次巡检在跑，in-flight 标志是唯一的互斥原语
type Scheduler struct {
	sweeper  Sweeper
	tracker  *Tracker
	clock    Clock
	interval time.Duration
	logger   logger.Logger

	inFlight   *atomic.Bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	started    *atomic.Bool
}

// NewScheduler 创建调度器
func NewScheduler(sweeper Sweeper, tracker *Tracker, clock Clock, interval time.Duration, log logger.Logger) *Scheduler {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Scheduler{
		sweeper:  sweeper,
		tracker:  tracker,
		clock:    clock,
		interval: interval,
		logger:   log,
		inFlight: atomic.NewBool(false),
		started:  atomic.NewBool(false),
	}
}

// Start 启动调度循环（后台 goroutine）
func (s *Scheduler) Start() {
	if !s.started.CAS(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFunc = cancel

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop 停止调度
// 不打断正在跑的巡检：单订单失败隔离让中途中止毫无必要，等它自然跑完
func (s *Scheduler) Stop() {
	if !s.started.CAS(true, false) {
		return
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()
}

// Status 当前状态快照
func (s *Scheduler) Status() JobState {
	return s.tracker.Snapshot()
}

// TrySweep 尝试触发一次巡检
// 已有巡检在跑时返回 errorx.ErrSweepInFlight，不排队。
// 巡检一旦开始就不可中途取消：停机只取消调度循环，正在跑的
// 巡检拿到的是剥离了取消信号的 Context，自然跑完为止
func (s *Scheduler) TrySweep(ctx context.Context) (*etsync.SweepSummary, error) {
	if !s.inFlight.CAS(false, true) {
		s.logger.Infof(ctx, "[Scheduler] sweep skipped: already in flight")
		return nil, errorx.ErrSweepInFlight
	}
	defer s.inFlight.Store(false)

	s.tracker.MarkStarted(s.clock.Now())

	summary, err := s.sweeper.Sweep(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Warnf(ctx, "[Scheduler] sweep finished with error: %v", err)
	}

	s.tracker.MarkFinished(s.clock.Now(), summary, err)
	return summary, nil
}

// loop 调度循环：启动即跑一次，然后按间隔触发
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.logger.Infof(ctx, "[Scheduler] started: interval=%s", s.interval)

	if _, err := s.TrySweep(ctx); err != nil {
		s.logger.Warnf(ctx, "[Scheduler] startup sweep skipped: %v", err)
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infof(ctx, "[Scheduler] stopped")
			return
		case <-ticker.C():
			if _, err := s.TrySweep(ctx); err != nil {
				s.logger.Warnf(ctx, "[Scheduler] sweep skipped: %v", err)
			}
		}
	}
}
