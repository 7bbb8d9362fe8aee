package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/pkg/errorx"
)

// 追踪信息写入商城订单元数据使用的键
const (
	MetaKeyTrackingNumber = "_fulfillment_tracking_number"
	MetaKeyCarrierCode    = "_fulfillment_carrier_code"
	MetaKeyShipDate       = "_fulfillment_ship_date"
)

// Client 商城平台 REST 客户端（WooCommerce v3 风格）
// 认证走 consumer key/secret 查询参数，所有请求携带超时
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
}

// NewClient 创建商城客户端
func NewClient(baseURL, consumerKey, consumerSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:        baseURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// wireOrder 商城订单的线缆格式
type wireOrder struct {
	ID       int64          `json:"id"`
	Number   string         `json:"number"`
	Status   string         `json:"status"`
	MetaData []wireMetaItem `json:"meta_data,omitempty"`
}

// wireMetaItem 订单元数据项
type wireMetaItem struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// GetOrder 按ID拉取订单快照
// 订单不存在时返回 errorx.ErrCommerceOrderNotFound
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*etsync.CommerceOrderSnapshot, error) {
	var wo wireOrder
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &wo); err != nil {
		return nil, err
	}
	return toSnapshot(&wo), nil
}

// ListOrders 按状态与更新时间枚举订单（巡检候选枚举用）
// updatedAfter 为零值时不限制时间窗口
func (c *Client) ListOrders(ctx context.Context, status string, updatedAfter time.Time, page, perPage int) ([]*etsync.CommerceOrderSnapshot, error) {
	query := url.Values{}
	query.Set("status", status)
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("orderby", "modified")
	query.Set("order", "desc")
	if !updatedAfter.IsZero() {
		query.Set("modified_after", updatedAfter.UTC().Format(time.RFC3339))
	}

	var wos []wireOrder
	if err := c.doJSON(ctx, http.MethodGet, "/orders", query, nil, &wos); err != nil {
		return nil, err
	}
	return toSnapshots(wos), nil
}

// SearchOrders 按订单号全文搜索（身份解析兜底策略用）
func (c *Client) SearchOrders(ctx context.Context, term string, page, perPage int) ([]*etsync.CommerceOrderSnapshot, error) {
	query := url.Values{}
	query.Set("search", term)
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var wos []wireOrder
	if err := c.doJSON(ctx, http.MethodGet, "/orders", query, nil, &wos); err != nil {
		return nil, err
	}
	return toSnapshots(wos), nil
}

// UpdateRequest 履约信息更新请求
type UpdateRequest struct {
	OrderID          int64
	CurrentStatus    string
	NextStatus       string // 为空表示不变更状态，仅合并追踪元数据
	TrackingNumber   string
	CarrierCode      string
	ShipDate         string
	ExistingMetadata []etsync.KeyValue
}

// UpdateResult 更新结果
type UpdateResult struct {
	Status  string // 更新后的订单状态
	Changed bool   // 本次调用是否真实产生了变化
}

// ApplyFulfillmentUpdate 应用履约更新（合并写，不盲目覆盖）
// 状态只在 NextStatus 非空时提交；追踪字段以元数据合并方式写入
func (c *Client) ApplyFulfillmentUpdate(ctx context.Context, req *UpdateRequest) (*UpdateResult, error) {
	body := map[string]interface{}{}
	if req.NextStatus != "" {
		body["status"] = req.NextStatus
	}

	meta, metaChanged := mergeTrackingMeta(req)
	if len(meta) > 0 {
		body["meta_data"] = meta
	}

	if len(body) == 0 {
		return &UpdateResult{Status: req.CurrentStatus, Changed: false}, nil
	}

	var wo wireOrder
	path := fmt.Sprintf("/orders/%d", req.OrderID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, body, &wo); err != nil {
		return nil, &errorx.CommerceUpdateError{OrderID: req.OrderID, Err: err}
	}

	changed := metaChanged || (req.NextStatus != "" && wo.Status != req.CurrentStatus)
	return &UpdateResult{Status: wo.Status, Changed: changed}, nil
}

// AddOrderNote 给订单追加备注
func (c *Client) AddOrderNote(ctx context.Context, orderID int64, note string, customerVisible bool) error {
	body := map[string]interface{}{
		"note":          note,
		"customer_note": customerVisible,
	}
	path := fmt.Sprintf("/orders/%d/notes", orderID)
	return c.doJSON(ctx, http.MethodPost, path, nil, body, nil)
}

// mergeTrackingMeta 合并追踪元数据
// 已有同值元数据不重复写；返回是否有新增/变更项
func mergeTrackingMeta(req *UpdateRequest) ([]wireMetaItem, bool) {
	existing := make(map[string]string, len(req.ExistingMetadata))
	for _, kv := range req.ExistingMetadata {
		existing[kv.Key] = kv.Value
	}

	var meta []wireMetaItem
	changed := false
	add := func(key, value string) {
		if value == "" {
			return
		}
		if existing[key] != value {
			changed = true
		}
		meta = append(meta, wireMetaItem{Key: key, Value: value})
	}

	add(MetaKeyTrackingNumber, req.TrackingNumber)
	add(MetaKeyCarrierCode, req.CarrierCode)
	add(MetaKeyShipDate, req.ShipDate)

	return meta, changed
}

// doJSON 发送 JSON 请求并解析响应
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("build request url failed: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.consumerKey)
	query.Set("consumer_secret", c.consumerSecret)
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errorx.ErrCommerceOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("commerce api status %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode commerce response failed: %w", err)
	}
	return nil
}

// toSnapshot 线缆格式转换为快照
func toSnapshot(wo *wireOrder) *etsync.CommerceOrderSnapshot {
	meta := make([]etsync.KeyValue, 0, len(wo.MetaData))
	for _, m := range wo.MetaData {
		if s, ok := m.Value.(string); ok {
			meta = append(meta, etsync.KeyValue{Key: m.Key, Value: s})
		}
	}
	return &etsync.CommerceOrderSnapshot{
		ID:       wo.ID,
		Number:   wo.Number,
		Status:   wo.Status,
		Metadata: meta,
	}
}

// toSnapshots 批量转换
func toSnapshots(wos []wireOrder) []*etsync.CommerceOrderSnapshot {
	out := make([]*etsync.CommerceOrderSnapshot, 0, len(wos))
	for i := range wos {
		out = append(out, toSnapshot(&wos[i]))
	}
	return out
}
