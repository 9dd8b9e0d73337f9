// Package reply 从模型生成的文本中提取结构化回复
package reply

import (
	"encoding/json"
	"regexp"
	"strings"
)

// PlaceholderText JSON 对象中没有可展示字段时的展示文本
const PlaceholderText = "Here is your structured response."

// 提取策略名
const (
	StrategyFenced = "fenced"
	StrategyBraces = "braces"
	StrategyPlain  = "plain"
)

// Parsed 解析结果
type Parsed struct {
	DisplayText string
	Structured  map[string]any
	Options     []string
	Confidence  *float64
	Step        string
	Strategy    string
}

// extractor 候选提取策略，必须是全函数（不 panic、不报错）
type extractor struct {
	name    string
	extract func(text string) []string
}

// 按顺序尝试；第一个产生候选的策略决定候选集合
var extractors = []extractor{
	{name: StrategyFenced, extract: fencedBlocks},
	{name: StrategyBraces, extract: braceSpans},
}

var fencePattern = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// displayFields 展示文本字段优先级
var displayFields = []string{"summary", "message", "text", "response"}

// Parse 解析生成文本，永不失败；没有可解析的 JSON 对象时原样返回文本
func Parse(text string) Parsed {
	for _, ex := range extractors {
		candidates := ex.extract(text)
		if len(candidates) == 0 {
			continue
		}
		for _, c := range candidates {
			if obj, ok := decodeObject(c); ok {
				p := fromObject(obj)
				p.Strategy = ex.name
				return p
			}
		}
		break
	}
	return Parsed{DisplayText: text, Strategy: StrategyPlain}
}

// fencedBlocks ```json ... ``` 代码块内容，按出现顺序
func fencedBlocks(text string) []string {
	matches := fencePattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// braceSpans 首个 { 到最后一个 } 的区间，之后是各个顶层平衡对象
func braceSpans(text string) []string {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return nil
	}

	out := []string{text[first : last+1]}
	for _, span := range balancedObjects(text[first : last+1]) {
		if span != out[0] {
			out = append(out, span)
		}
	}
	return out
}

// balancedObjects 扫描顶层 {...}，跳过字符串字面量内的括号
func balancedObjects(s string) []string {
	var (
		out      []string
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, s[start:i+1])
				start = -1
			}
		}
	}
	return out
}

func decodeObject(candidate string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func fromObject(obj map[string]any) Parsed {
	p := Parsed{DisplayText: PlaceholderText, Structured: obj}

	for _, field := range displayFields {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			p.DisplayText = s
			break
		}
	}

	if raw, ok := obj["options"].([]any); ok {
		opts := make([]string, 0, len(raw))
		for _, v := range raw {
			s, ok := v.(string)
			if !ok {
				opts = nil
				break
			}
			opts = append(opts, s)
		}
		p.Options = opts
	}

	if c, ok := obj["confidence"].(float64); ok {
		p.Confidence = &c
	}
	if step, ok := obj["step"].(string); ok {
		p.Step = step
	}
	return p
}
