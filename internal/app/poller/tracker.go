package poller

import (
	"sync"
	"time"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
)

// JobState 巡检任务状态快照
// 进程启动时全空，只随进程重启归零
type JobState struct {
	LastStartedAt  *time.Time           `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time           `json:"last_finished_at,omitempty"`
	LastResult     *etsync.SweepSummary `json:"last_result,omitempty"`
	LastError      string               `json:"last_error,omitempty"`
	InFlight       bool                 `json:"in_flight"`
}

// Tracker 巡检状态追踪器
// 只由调度器写入；外部调用方（状态接口）只读快照
type Tracker struct {
	mu    sync.RWMutex
	state JobState
}

// NewTracker 创建追踪器
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkStarted 记录一次巡检开始
func (t *Tracker) MarkStarted(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	started := at
	t.state.LastStartedAt = &started
	t.state.InFlight = true
}

// MarkFinished 记录一次巡检结束
func (t *Tracker) MarkFinished(at time.Time, result *etsync.SweepSummary, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	finished := at
	t.state.LastFinishedAt = &finished
	t.state.LastResult = result
	t.state.InFlight = false
	if err != nil {
		t.state.LastError = err.Error()
	} else {
		t.state.LastError = ""
	}
}

// Snapshot 返回状态副本
func (t *Tracker) Snapshot() JobState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
