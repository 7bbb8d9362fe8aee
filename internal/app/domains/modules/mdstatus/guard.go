package mdstatus

import "strings"

// terminalStatuses 终态保护集合
// 一旦进入这些状态，任何自动同步都不得再迁移该订单
var terminalStatuses = map[string]bool{
	CommerceStatusCancelled: true,
	CommerceStatusRefunded:  true,
	CommerceStatusTrash:     true,
}

// ShouldApply 判断状态更新是否可以安全落盘
// 规则：
//  1. 目标状态为空 → 不更新
//  2. 当前状态与目标状态一致（忽略大小写与 wc- 前缀）→ 幂等，不更新
//  3. 当前状态为终态（cancelled/refunded/trash）→ 保护，不更新
func ShouldApply(currentStatus, nextStatus string) bool {
	next := normalizeCommerceStatus(nextStatus)
	if next == "" {
		return false
	}

	current := normalizeCommerceStatus(currentStatus)
	if current == next {
		return false
	}

	if terminalStatuses[current] {
		return false
	}

	return true
}

// normalizeCommerceStatus 规范化商城状态
// 商城 REST 接口偶尔返回带 wc- 前缀的状态，比较前统一剥掉
func normalizeCommerceStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	return strings.TrimPrefix(s, "wc-")
}
