package mdstatus

import "strings"

// 商城侧订单状态
const (
	CommerceStatusProcessing = "processing"
	CommerceStatusCompleted  = "completed"
	CommerceStatusCancelled  = "cancelled"
	CommerceStatusOnHold     = "on-hold"
	CommerceStatusRefunded   = "refunded"
	CommerceStatusTrash      = "trash"
)

// statusTable 履约状态 → 商城状态映射表
// 映射刻意保持窄：未知的履约状态（如承运商中间态）绝不强制商城侧变更
var statusTable = map[string]string{
	"shipped":           CommerceStatusCompleted,
	"cancelled":         CommerceStatusCancelled,
	"canceled":          CommerceStatusCancelled,
	"awaiting_shipment": CommerceStatusProcessing,
	"awaiting_payment":  CommerceStatusOnHold,
	"on_hold":           CommerceStatusOnHold,
	"onhold":            CommerceStatusOnHold,
}

// MapFulfillmentStatus 履约状态映射为商城状态
// 纯函数：无 I/O、无异常；未知输入返回空串（表示不变更）
func MapFulfillmentStatus(raw string) string {
	return statusTable[NormalizeStatus(raw)]
}

// NormalizeStatus 规范化状态词元
// 去首尾空白、转小写、空白/连字符折叠为单个下划线
func NormalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSep := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '-' || r == '_' {
			if !lastSep && b.Len() > 0 {
				b.WriteByte('_')
				lastSep = true
			}
			continue
		}
		b.WriteRune(r)
		lastSep = false
	}

	return strings.TrimSuffix(b.String(), "_")
}
