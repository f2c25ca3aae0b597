// Package prompt - общие куски промптов: подстановка темы, превью источников,
// блок контекста для финального синтеза.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// TopicPlaceholder заменяется на тему исследования в шаблонах подзапросов
const TopicPlaceholder = "{topic}"

// кавычки, которые модель любит ставить вокруг запроса
const quoteChars = "\"'`“”„«»‘’"

func Render(template, topic string) string {
	return strings.ReplaceAll(template, TopicPlaceholder, topic)
}

// Preview - строки "title: excerpt" для первых count источников,
// excerpt обрезается до length рун.
func Preview(sources []domain.Source, count, length int) string {
	if count > len(sources) {
		count = len(sources)
	}
	lines := make([]string, 0, count)
	for _, s := range sources[:count] {
		lines = append(lines, s.Title+": "+domain.Truncate(s.Excerpt, length))
	}
	return strings.Join(lines, "\n")
}

// CleanQuery убирает пробелы и кавычки вокруг ответа модели.
// Двойные кавычки внутри тоже выкидываются, поисковику они только мешают.
func CleanQuery(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, quoteChars+" \t\r\n")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

// ContextBlock - источники в формате для промпта, limit <= 0 значит все
func ContextBlock(sources []domain.Source, limit int) string {
	if limit > 0 && limit < len(sources) {
		sources = sources[:limit]
	}

	var sb strings.Builder
	for i, s := range sources {
		fmt.Fprintf(&sb, "[S%d] %s (%s)\n%s\n\n", i+1, s.Title, s.URL, s.Excerpt)
	}
	return strings.TrimRight(sb.String(), "\n")
}
