package poller

import "time"

// Clock 时钟抽象
// 调度器通过它取时间与定时器，测试里可以推进虚拟时间
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker 定时器抽象
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// systemClock 系统时钟实现
type systemClock struct{}

// NewSystemClock 创建系统时钟
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

// systemTicker time.Ticker 包装
type systemTicker struct {
	ticker *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *systemTicker) Stop() {
	t.ticker.Stop()
}
