package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"campaign_studio/internal/config"
)

// fallbackCaptionRunes 无法解析时截取原文的长度
const fallbackCaptionRunes = 150

// TextResult 文案生成结果
type TextResult struct {
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt"`
}

// FallbackContent 模型输出无法解析时使用的固定内容
type FallbackContent struct {
	Hashtags    []string
	ImagePrompt string
}

// ==================== Normalizer ====================

// Normalizer 把模型返回的自由文本规整为 TextResult，永远不返回错误
type Normalizer struct {
	fallback FallbackContent
}

// NewNormalizer 创建规整器
func NewNormalizer(fallback FallbackContent) *Normalizer {
	if len(fallback.Hashtags) == 0 {
		fallback.Hashtags = config.DefaultFallbackHashtags
	}
	if fallback.ImagePrompt == "" {
		fallback.ImagePrompt = config.DefaultFallbackImagePrompt
	}
	return &Normalizer{fallback: fallback}
}

// Normalize 提取文本中第一个完整的 JSON 对象并解析
// 找不到对象或解析失败时返回固定的降级结果。
func (n *Normalizer) Normalize(raw string) *TextResult {
	object, ok := extractJSONObject(raw)
	if ok {
		if result, err := parseTextResult(object); err == nil {
			return result
		}
		// 模型常在字符串里直接换行，折叠空白后再试一次
		if result, err := parseTextResult(collapseWhitespace(object)); err == nil {
			return result
		}
	}
	return n.Fallback(raw)
}

// Fallback 基于原文构造降级结果
func (n *Normalizer) Fallback(raw string) *TextResult {
	return &TextResult{
		Caption:     truncateRunes(raw, fallbackCaptionRunes),
		Hashtags:    append([]string(nil), n.fallback.Hashtags...),
		ImagePrompt: n.fallback.ImagePrompt,
	}
}

// ==================== 解析 ====================

// parseTextResult 只要求语法合法，字段类型不符时按文本宽松转换
func parseTextResult(object string) (*TextResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return nil, err
	}

	return &TextResult{
		Caption:     coerceString(fields["caption"]),
		Hashtags:    coerceTags(fields["hashtags"]),
		ImagePrompt: coerceString(fields["imagePrompt"]),
	}, nil
}

// coerceString 字符串原样返回，数组按空格拼接，其余取 JSON 原文
func coerceString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if v := coerceString(item); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " ")
	}
	return compactJSON(raw)
}

// coerceTags 兼容 ["a","b"]、"a, b" 以及混入非字符串元素的数组
func coerceTags(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	tags := []string{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return tags
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			tags = append(tags, coerceString(item))
		}
		return tags
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return append(tags, compactJSON(raw))
	}
	return strings.FieldsFunc(single, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// extractJSONObject 从第一个 '{' 开始按括号深度扫描，字符串内的括号不计数
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
