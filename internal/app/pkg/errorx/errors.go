package errorx

import (
	"errors"
	"fmt"
	"strings"
)

// 定义业务错误
var (
	ErrCommerceOrderNotFound = errors.New("commerce order not found")
	ErrMissingIdentifier     = errors.New("missing order identifier")
	ErrSweepInFlight         = errors.New("sweep already in flight")
)

// IdentityUnresolvedError 身份解析失败（所有策略均未命中）
// 携带已尝试的策略列表，便于排查跨系统订单身份问题
type IdentityUnresolvedError struct {
	OrderNumber        string
	FulfillmentOrderID string
	Tried              []string
}

// Error 实现 error 接口
func (e *IdentityUnresolvedError) Error() string {
	return fmt.Sprintf("identity unresolved: order_number=%q fulfillment_order_id=%q tried=[%s]",
		e.OrderNumber, e.FulfillmentOrderID, strings.Join(e.Tried, ","))
}

// FulfillmentLookupError 履约平台查询失败（非致命，执行器回退到回调字段）
type FulfillmentLookupError struct {
	OrderNumber string
	Err         error
}

// Error 实现 error 接口
func (e *FulfillmentLookupError) Error() string {
	return fmt.Sprintf("fulfillment lookup failed: order_number=%q: %v", e.OrderNumber, e.Err)
}

// Unwrap 返回底层错误
func (e *FulfillmentLookupError) Unwrap() error {
	return e.Err
}

// CommerceUpdateError 商城订单更新失败
type CommerceUpdateError struct {
	OrderID int64
	Err     error
}

// Error 实现 error 接口
func (e *CommerceUpdateError) Error() string {
	return fmt.Sprintf("commerce update failed: order_id=%d: %v", e.OrderID, e.Err)
}

// Unwrap 返回底层错误
func (e *CommerceUpdateError) Unwrap() error {
	return e.Err
}
