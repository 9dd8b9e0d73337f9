package gemini

import (
	"encoding/json"
	"strings"
)

// generateRequest 请求信封 {"contents":[{"parts":[{"text":...}]}]}
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

func newGenerateRequest(prompt string) generateRequest {
	return generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
}

// ExtractText 从响应信封中取 candidates[0].content.parts[0].text
//   - 响应体不是合法 JSON：原样返回响应体
//   - 合法 JSON 但路径缺失或类型不符：返回空串
func ExtractText(body []byte) string {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return string(body)
	}

	node := root
	for _, step := range []any{"candidates", 0, "content", "parts", 0, "text"} {
		switch key := step.(type) {
		case string:
			obj, ok := node.(map[string]any)
			if !ok {
				return ""
			}
			if node, ok = obj[key]; !ok {
				return ""
			}
		case int:
			arr, ok := node.([]any)
			if !ok || len(arr) <= key {
				return ""
			}
			node = arr[key]
		}
	}

	text, ok := node.(string)
	if !ok {
		return ""
	}
	return text
}

// snippet 截断响应体，日志与错误中只保留前 n 字节
func snippet(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
