package audit

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	masked         = "******"
	maxParamsBytes = 2000

	// OmittedBody 无法解析为 JSON 的请求体不落库，避免未脱敏的密码进入日志
	OmittedBody = "[unparseable body omitted]"
)

var sensitiveKeys = []string{"password", "token", "secret"}

func sensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// SanitizeParams 先完整解析、屏蔽密码类字段，再截断；解析失败一律返回 OmittedBody
func SanitizeParams(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return OmittedBody
	}
	b, err := json.Marshal(mask(v))
	if err != nil {
		return OmittedBody
	}
	return truncate(string(b))
}

func mask(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if sensitive(k) {
				t[k] = masked
				continue
			}
			t[k] = mask(val)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = mask(t[i])
		}
		return t
	default:
		return v
	}
}

func truncate(s string) string {
	if len(s) <= maxParamsBytes {
		return s
	}
	// 不截断在多字节字符中间
	cut := maxParamsBytes
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
