package etsync

import "time"

// SyncRequest 对账请求（规范化后的内部请求）
// 来源：履约平台 Webhook 回调，或巡检任务按订单号构造
type SyncRequest struct {
	OrderNumber         string `json:"order_number,omitempty"`
	FulfillmentOrderID  string `json:"fulfillment_order_id,omitempty"`
	FulfillmentOrderKey string `json:"fulfillment_order_key,omitempty"`
	FulfillmentStatus   string `json:"fulfillment_status,omitempty"`
	TrackingNumber      string `json:"tracking_number,omitempty"`
	CarrierCode         string `json:"carrier_code,omitempty"`
	ShipDate            string `json:"ship_date,omitempty"`
}

// HasIdentifier 是否携带可用的订单标识
// 订单号与履约订单ID至少存在一个，否则请求不可处理
func (r *SyncRequest) HasIdentifier() bool {
	return r.OrderNumber != "" || r.FulfillmentOrderID != "" || r.FulfillmentOrderKey != ""
}

// ResolveSource 身份解析来源
type ResolveSource string

const (
	SourceOrderKeyEmbedded ResolveSource = "order_key_embedded"
	SourceExternalIDSQL    ResolveSource = "external_id_lookup_sql"
	SourceExternalIDLocal  ResolveSource = "external_id_lookup_local"
	SourceNumberEqualsID   ResolveSource = "number_equals_id"
	SourceSearchByNumber   ResolveSource = "search_by_number"
	SourceUnresolved       ResolveSource = "unresolved"
)

// ResolvedIdentity 身份解析结果（一次性计算，不跨请求缓存）
type ResolvedIdentity struct {
	CommerceOrderID int64         `json:"commerce_order_id"`
	Source          ResolveSource `json:"source"`
}

// KeyValue 商城订单元数据项
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CommerceOrderSnapshot 商城订单快照（每次对账前重新拉取）
type CommerceOrderSnapshot struct {
	ID       int64      `json:"id"`
	Number   string     `json:"number"`
	Status   string     `json:"status"`
	Metadata []KeyValue `json:"metadata,omitempty"`
}

// FulfillmentShipment 履约平台的发货信息
type FulfillmentShipment struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	CarrierCode    string `json:"carrier_code,omitempty"`
	ShipDate       string `json:"ship_date,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	OrderKey       string `json:"order_key,omitempty"`
}

// CommerceResult 商城侧对账结果
type CommerceResult struct {
	PreviousStatus string `json:"previous_status"`
	NextStatus     string `json:"next_status,omitempty"`
	Updated        bool   `json:"updated"`
	Changed        bool   `json:"changed"`
}

// ReconciliationOutcome 一次对账的完整结果
type ReconciliationOutcome struct {
	ResolvedIdentity ResolvedIdentity    `json:"resolved_identity"`
	Fulfillment      FulfillmentShipment `json:"fulfillment"`
	Commerce         CommerceResult      `json:"commerce"`
}

// SweepSummary 单次巡检汇总（不可变，由归约产生）
type SweepSummary struct {
	SweepID    string    `json:"sweep_id"`
	Processed  int       `json:"processed"`
	Updated    int       `json:"updated"`
	Missing    int       `json:"missing"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
