package webhookparse

// PayloadKind 回调载荷类型（标签联合）
type PayloadKind string

const (
	KindJSON    PayloadKind = "json"
	KindXML     PayloadKind = "xml"
	KindText    PayloadKind = "text"
	KindUnknown PayloadKind = "unknown"
)

// Payload 规范化后的回调载荷
// 下游统一按扁平化字段表消费，不再关心原始格式
type Payload struct {
	Kind   PayloadKind
	Fields map[string]string
}

// Get 按规范化键读取字段
func (p *Payload) Get(key string) string {
	if p == nil || p.Fields == nil {
		return ""
	}
	return p.Fields[normalizeKey(key)]
}

// put 写入字段（首个值优先，不覆盖）
func (p *Payload) put(key, value string) {
	k := normalizeKey(key)
	if k == "" || value == "" {
		return
	}
	if _, exists := p.Fields[k]; !exists {
		p.Fields[k] = value
	}
}

// normalizeKey 规范化字段键：小写并去掉下划线/连字符/空白
// orderNumber / order_number / Order-Number 归一为 ordernumber
func normalizeKey(key string) string {
	b := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		}
	}
	return string(b)
}
