package webhookparse

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
)

// 字段别名表：同一字段在新旧回调格式中的各种写法
// 覆盖历史 XML 回调与新版结构化 Webhook 两套载荷
var (
	orderNumberAliases = []string{"ordernumber", "orderno", "order", "number", "merchantorderno"}
	orderIDAliases     = []string{"fulfillmentorderid", "orderid", "shipmentorderid"}
	orderKeyAliases    = []string{"fulfillmentorderkey", "orderkey"}
	statusAliases      = []string{"fulfillmentstatus", "orderstatus", "shipmentstatus", "status"}
	trackingAliases    = []string{"trackingnumber", "trackingno", "tracking"}
	carrierAliases     = []string{"carriercode", "carrier", "shippingcarrier", "shippingmethod"}
	shipDateAliases    = []string{"shipdate", "shippeddate", "shipdatetime"}
)

// Parse 解析入站回调为规范化同步请求
// 绝不向调用方抛错：无法解析时返回全空请求，由调用方按“确认并跳过”处理
func Parse(body []byte, contentType string) *etsync.SyncRequest {
	payload := Detect(body, contentType)

	return &etsync.SyncRequest{
		OrderNumber:         first(payload, orderNumberAliases),
		FulfillmentOrderID:  first(payload, orderIDAliases),
		FulfillmentOrderKey: first(payload, orderKeyAliases),
		FulfillmentStatus:   first(payload, statusAliases),
		TrackingNumber:      first(payload, trackingAliases),
		CarrierCode:         first(payload, carrierAliases),
		ShipDate:            first(payload, shipDateAliases),
	}
}

// Detect 识别载荷格式并扁平化为字段表
func Detect(body []byte, contentType string) *Payload {
	trimmed := bytes.TrimSpace(body)
	ct := strings.ToLower(contentType)

	if len(trimmed) == 0 {
		return &Payload{Kind: KindUnknown, Fields: map[string]string{}}
	}

	// 结构化 JSON 载荷
	if strings.Contains(ct, "json") || trimmed[0] == '{' || trimmed[0] == '[' {
		if p, ok := parseJSON(trimmed); ok {
			return p
		}
	}

	// XML 载荷（历史回调），含声明为 text 但内容实为 XML 的情况
	if strings.Contains(ct, "xml") || trimmed[0] == '<' {
		if p, ok := parseXML(trimmed); ok {
			return p
		}
	}

	// 纯文本：尝试按 URL 编码键值对解析
	if p, ok := parseForm(trimmed); ok {
		return p
	}

	return &Payload{Kind: KindUnknown, Fields: map[string]string{}}
}

// first 按别名优先级取首个非空字段
func first(p *Payload, aliases []string) string {
	for _, alias := range aliases {
		if v := p.Get(alias); v != "" {
			return v
		}
	}
	return ""
}

// parseJSON 解析 JSON 对象并递归扁平化
func parseJSON(body []byte) (*Payload, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, false
	}

	p := &Payload{Kind: KindJSON, Fields: map[string]string{}}
	flattenValue(p, "", root)
	return p, true
}

// flattenValue 递归扁平化 JSON 值
// 嵌套对象的叶子字段以自身键名入表（大小写无关，首值优先）。
// 对象键按字典序遍历：同名叶子出现在多个层级时胜者必须稳定
func flattenValue(p *Payload, key string, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenValue(p, k, val[k])
		}
	case []interface{}:
		for _, child := range val {
			flattenValue(p, key, child)
		}
	case string:
		p.put(key, val)
	case json.Number:
		p.put(key, val.String())
	case bool:
		p.put(key, strconv.FormatBool(val))
	}
}

// parseXML 流式解析 XML，元素文本按元素名扁平化入表
func parseXML(body []byte) (*Payload, bool) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	p := &Payload{Kind: KindXML, Fields: map[string]string{}}
	var current string
	seen := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			seen = true
			current = t.Name.Local
			for _, attr := range t.Attr {
				p.put(attr.Name.Local, attr.Value)
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if current != "" && text != "" {
				p.put(current, text)
			}
		case xml.EndElement:
			current = ""
		}
	}

	if !seen {
		return nil, false
	}
	return p, true
}

// parseForm 按 URL 编码键值对解析纯文本载荷
func parseForm(body []byte) (*Payload, bool) {
	s := string(body)
	if !strings.Contains(s, "=") || strings.ContainsAny(s, "\x00") {
		return nil, false
	}

	values, err := url.ParseQuery(s)
	if err != nil || len(values) == 0 {
		return nil, false
	}

	p := &Payload{Kind: KindText, Fields: map[string]string{}}
	for k, vs := range values {
		if len(vs) > 0 {
			p.put(k, vs[0])
		}
	}
	return p, true
}
