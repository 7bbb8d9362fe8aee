package webhookparse

import "testing"

func TestParseJSONPayload(t *testing.T) {
	body := []byte(`{
		"order_number": "1001",
		"orderId": "998877",
		"order_key": "woo-1001",
		"shipment_status": "shipped",
		"trackingNumber": "1Z999AA10123456784",
		"carrierCode": "ups",
		"ship_date": "2026-08-01"
	}`)

	req := Parse(body, "application/json")

	if req.OrderNumber != "1001" {
		t.Errorf("OrderNumber = %q, want 1001", req.OrderNumber)
	}
	if req.FulfillmentOrderID != "998877" {
		t.Errorf("FulfillmentOrderID = %q, want 998877", req.FulfillmentOrderID)
	}
	if req.FulfillmentOrderKey != "woo-1001" {
		t.Errorf("FulfillmentOrderKey = %q, want woo-1001", req.FulfillmentOrderKey)
	}
	if req.FulfillmentStatus != "shipped" {
		t.Errorf("FulfillmentStatus = %q, want shipped", req.FulfillmentStatus)
	}
	if req.TrackingNumber != "1Z999AA10123456784" {
		t.Errorf("TrackingNumber = %q, want 1Z999AA10123456784", req.TrackingNumber)
	}
	if req.CarrierCode != "ups" {
		t.Errorf("CarrierCode = %q, want ups", req.CarrierCode)
	}
	if req.ShipDate != "2026-08-01" {
		t.Errorf("ShipDate = %q, want 2026-08-01", req.ShipDate)
	}
}

// 嵌套对象的字段也要能按叶子键提取
func TestParseJSONNestedPayload(t *testing.T) {
	body := []byte(`{
		"resource": {
			"order": {
				"orderNumber": "2002",
				"orderStatus": "awaiting_shipment"
			}
		}
	}`)

	req := Parse(body, "application/json")

	if req.OrderNumber != "2002" {
		t.Errorf("OrderNumber = %q, want 2002", req.OrderNumber)
	}
	if req.FulfillmentStatus != "awaiting_shipment" {
		t.Errorf("FulfillmentStatus = %q, want awaiting_shipment", req.FulfillmentStatus)
	}
}

// 同名叶子字段出现在多个嵌套层级时，提取结果必须稳定
// 对象键按字典序遍历，首值优先：shipment.status 先于顶层 status 入表
func TestParseJSONDuplicateLeafKeyDeterministic(t *testing.T) {
	body := []byte(`{"status": "shipped", "shipment": {"status": "delivered"}}`)

	for i := 0; i < 50; i++ {
		req := Parse(body, "application/json")
		if req.FulfillmentStatus != "delivered" {
			t.Fatalf("iteration %d: FulfillmentStatus = %q, want delivered every time", i, req.FulfillmentStatus)
		}
	}
}

// 数值型订单号要保留原始字面值
func TestParseJSONNumericValues(t *testing.T) {
	body := []byte(`{"orderNumber": 482, "orderId": 12345}`)

	req := Parse(body, "application/json")

	if req.OrderNumber != "482" {
		t.Errorf("OrderNumber = %q, want 482", req.OrderNumber)
	}
	if req.FulfillmentOrderID != "12345" {
		t.Errorf("FulfillmentOrderID = %q, want 12345", req.FulfillmentOrderID)
	}
}

func TestParseXMLPayload(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
		<ShipNotice>
			<OrderNumber>3003</OrderNumber>
			<OrderStatus>Shipped</OrderStatus>
			<TrackingNumber>9400100000000000000000</TrackingNumber>
			<Carrier>usps</Carrier>
			<ShipDate>08/15/2026</ShipDate>
		</ShipNotice>`)

	req := Parse(body, "text/xml")

	if req.OrderNumber != "3003" {
		t.Errorf("OrderNumber = %q, want 3003", req.OrderNumber)
	}
	if req.FulfillmentStatus != "Shipped" {
		t.Errorf("FulfillmentStatus = %q, want Shipped", req.FulfillmentStatus)
	}
	if req.TrackingNumber != "9400100000000000000000" {
		t.Errorf("TrackingNumber = %q, want 9400100000000000000000", req.TrackingNumber)
	}
	if req.CarrierCode != "usps" {
		t.Errorf("CarrierCode = %q, want usps", req.CarrierCode)
	}
	if req.ShipDate != "08/15/2026" {
		t.Errorf("ShipDate = %q, want 08/15/2026", req.ShipDate)
	}
}

// Content-Type 声明为纯文本但内容是 XML，也要按 XML 解析
func TestParseXMLDeclaredAsText(t *testing.T) {
	body := []byte(`<Notice><OrderNo>4004</OrderNo></Notice>`)

	req := Parse(body, "text/plain")

	if req.OrderNumber != "4004" {
		t.Errorf("OrderNumber = %q, want 4004", req.OrderNumber)
	}
}

func TestParseFormEncodedPayload(t *testing.T) {
	body := []byte(`order_number=5005&status=cancelled`)

	req := Parse(body, "application/x-www-form-urlencoded")

	if req.OrderNumber != "5005" {
		t.Errorf("OrderNumber = %q, want 5005", req.OrderNumber)
	}
	if req.FulfillmentStatus != "cancelled" {
		t.Errorf("FulfillmentStatus = %q, want cancelled", req.FulfillmentStatus)
	}
}

// 无法解析的二进制载荷必须返回全空请求而不是报错
func TestParseUnparseableBinaryBlob(t *testing.T) {
	body := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01}

	req := Parse(body, "application/octet-stream")

	if req.HasIdentifier() {
		t.Errorf("binary blob produced identifiers: %+v", req)
	}
}

func TestParseEmptyBody(t *testing.T) {
	req := Parse(nil, "application/json")
	if req.HasIdentifier() {
		t.Errorf("empty body produced identifiers: %+v", req)
	}
}

func TestDetectKinds(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		contentType string
		want        PayloadKind
	}{
		{"json object", `{"a":"b"}`, "application/json", KindJSON},
		{"xml", `<a>b</a>`, "text/xml", KindXML},
		{"form text", `a=b`, "text/plain", KindText},
		{"garbage", `!!!!`, "text/plain", KindUnknown},
		{"empty", ``, "", KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Detect([]byte(tc.body), tc.contentType)
			if p.Kind != tc.want {
				t.Errorf("Detect kind = %q, want %q", p.Kind, tc.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"orderNumber", "ordernumber"},
		{"order_number", "ordernumber"},
		{"Order-Number", "ordernumber"},
		{"ORDER NUMBER", "ordernumber"},
	}
	for _, tc := range cases {
		if got := normalizeKey(tc.in); got != tc.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
