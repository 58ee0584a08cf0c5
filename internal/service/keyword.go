package service

import (
	"strings"
	"unicode/utf8"
)

const keywordPunctuation = ".,/#!$%^&*;:{}=-_`~()"

var keywordStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "a": {}, "an": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "at": {}, "by": {}, "is": {}, "it": {}, "this": {}, "that": {},
}

// ExtractKeywords 从描述中提取关键词
// 标点替换为空格后按空白切分、转小写，丢弃长度不超过 3 的词和停用词。
// 不做词干化和去重，保持原文出现顺序。
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(keywordPunctuation, r) {
			return ' '
		}
		return r
	}, text)

	keywords := make([]string, 0)
	for _, word := range strings.Fields(cleaned) {
		word = strings.ToLower(word)
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if _, stop := keywordStopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
