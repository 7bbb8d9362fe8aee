package logger

import "context"

// ctxKey Context 键类型（避免与其他包冲突）
type ctxKey string

// Context 日志字段键
const (
	CtxKeyTraceID ctxKey = "trace_id"
	CtxKeyOrderID ctxKey = "order_id"
	CtxKeySweepID ctxKey = "sweep_id"
)

// WithTraceID 注入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, CtxKeyTraceID, traceID)
}

// WithOrderID 注入商城订单ID
func WithOrderID(ctx context.Context, orderID int64) context.Context {
	return context.WithValue(ctx, CtxKeyOrderID, orderID)
}

// WithSweepID 注入巡检批次ID
func WithSweepID(ctx context.Context, sweepID string) context.Context {
	return context.WithValue(ctx, CtxKeySweepID, sweepID)
}
