package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
)

// Client 履约平台 REST 客户端（ShipStation 风格）
// Basic Auth 认证，所有请求携带超时
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient 创建履约平台客户端
func NewClient(baseURL, apiKey, apiSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wireOrderList 履约平台订单列表响应
type wireOrderList struct {
	Orders []wireOrder `json:"orders"`
	Total  int         `json:"total"`
}

// wireOrder 履约平台订单
type wireOrder struct {
	OrderID        int64  `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	OrderKey       string `json:"orderKey"`
	OrderStatus    string `json:"orderStatus"`
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"carrierCode"`
	ShipDate       string `json:"shipDate"`
}

// FetchOrderStatus 按订单号拉取最新履约状态
// 平台不认识该订单号时返回 nil, nil（调用方计为 missing 而非失败）
func (c *Client) FetchOrderStatus(ctx context.Context, orderNumber string) (*etsync.FulfillmentShipment, error) {
	query := url.Values{}
	query.Set("orderNumber", orderNumber)
	query.Set("pageSize", "50")

	u, err := url.Parse(c.baseURL + "/orders")
	if err != nil {
		return nil, fmt.Errorf("build request url failed: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fulfillment api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fulfillment api status %d: %s", resp.StatusCode, string(data))
	}

	var list wireOrderList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode fulfillment response failed: %w", err)
	}

	// 接口按订单号模糊匹配，需要精确比对后取最新一条
	var match *wireOrder
	for i := range list.Orders {
		if list.Orders[i].OrderNumber == orderNumber {
			match = &list.Orders[i]
		}
	}
	if match == nil {
		return nil, nil
	}

	shipment := &etsync.FulfillmentShipment{
		Status:         match.OrderStatus,
		TrackingNumber: match.TrackingNumber,
		CarrierCode:    match.CarrierCode,
		ShipDate:       match.ShipDate,
		OrderKey:       match.OrderKey,
	}
	if match.OrderID > 0 {
		shipment.OrderID = strconv.FormatInt(match.OrderID, 10)
	}
	return shipment, nil
}
