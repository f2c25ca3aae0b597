package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// MaxMessageLen - лимит телеграма на одно сообщение
const MaxMessageLen = 4096

const separator = "━━━━━━━━━━━━━━━━━━━━━"

func FormatLayeredReport(r *domain.ResearchReport) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Research Report</b>\n\n")
	sb.WriteString(html.EscapeString(r.Narrative))

	if len(r.Sources) > 0 {
		sb.WriteString("\n\n" + separator + "\n")
		sb.WriteString("<b>🔗 Sources</b>\n")
		writeLinks(&sb, r.Sources)
	}
	return sb.String()
}

func FormatSynthesisReport(r *domain.SynthesisReport) string {
	var sb strings.Builder
	sb.WriteString("<b>📊 Executive Synthesis</b>\n\n")
	sb.WriteString(html.EscapeString(r.Synthesis))

	sb.WriteString("\n\n" + separator + "\n")
	sb.WriteString("<b>🔗 Sources</b>\n")
	for _, st := range r.Subtasks {
		fmt.Fprintf(&sb, "\n<b>Subtask %d</b> (<i>%s</i>)\n", st.Index, html.EscapeString(st.Focus))
		if len(st.Sources) == 0 {
			sb.WriteString("  nothing found\n")
			continue
		}
		writeLinks(&sb, st.Sources)
	}
	return sb.String()
}

// FormatResult выбирает формат по режиму
func FormatResult(res *domain.Result) string {
	switch {
	case res.Layered != nil:
		return FormatLayeredReport(res.Layered)
	case res.Synthesis != nil:
		return FormatSynthesisReport(res.Synthesis)
	}
	return ""
}

func FormatConversations(convs []Conversation, current int) string {
	var sb strings.Builder
	sb.WriteString("<b>💬 Conversations</b>\n\n")
	for i, c := range convs {
		marker := "○"
		if i == current {
			marker = "●"
		}
		fmt.Fprintf(&sb, "%s %d. %s", marker, i+1, html.EscapeString(c.Title))
		if n := len(c.Messages); n > 0 {
			fmt.Fprintf(&sb, " <i>(%d)</i>", n)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n/switch N to open, /new to start a new one")
	return sb.String()
}

func writeLinks(sb *strings.Builder, sources []domain.Source) {
	for _, s := range sources {
		title := s.Title
		if strings.TrimSpace(title) == "" {
			title = truncateURL(s.URL, 50)
		}
		fmt.Fprintf(sb, "• <a href=\"%s\">%s</a>\n", html.EscapeString(s.URL), html.EscapeString(title))
	}
}

// SplitMessage режет текст на куски не длиннее maxLen байт,
// по возможности по пробелам и не внутри HTML-тега.
// Теги, открытые на месте разреза, закрываются в конце куска и открываются заново в следующем.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	reopen := ""
	for len(text) > 0 {
		if len(reopen)+len(text) <= maxLen {
			messages = append(messages, reopen+text)
			break
		}

		budget := maxLen - len(reopen)
		if budget < maxLen/2 {
			// открывающий тег слишком длинный, лимит тут не выдержать
			budget = max(maxLen/2, 1)
		}
		if len(text) <= budget {
			messages = append(messages, reopen+text+closeTags(openTags(reopen+text)))
			break
		}

		splitPoint := splitPointFor(text, budget)
		chunk := reopen + text[:splitPoint]
		open := openTags(chunk)
		closing := closeTags(open)
		if len(chunk)+len(closing) > maxLen && budget-len(closing) > 0 {
			splitPoint = splitPointFor(text, budget-len(closing))
			chunk = reopen + text[:splitPoint]
			open = openTags(chunk)
			closing = closeTags(open)
		}

		messages = append(messages, chunk+closing)
		reopen = strings.Join(open, "")
		text = text[splitPoint:]
	}

	return messages
}

func splitPointFor(text string, maxLen int) int {
	splitPoint := findSafeSplitPoint(text, maxLen)
	if splitPoint <= 0 || splitPoint > len(text) {
		splitPoint = maxLen
	}
	// не рвем многобайтовый символ
	for splitPoint > 1 && splitPoint < len(text) && !utf8.RuneStart(text[splitPoint]) {
		splitPoint--
	}
	return splitPoint
}

// openTags - теги, не закрытые к концу s, целиком с атрибутами, внешний первый
func openTags(s string) []string {
	var stack []string
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			break
		}
		tag := s[i : i+end+1]
		i += end

		if !strings.HasPrefix(tag, "</") {
			stack = append(stack, tag)
			continue
		}
		name := tagName(tag[2:])
		for j := len(stack) - 1; j >= 0; j-- {
			if tagName(stack[j][1:]) == name {
				stack = stack[:j]
				break
			}
		}
	}
	return stack
}

func closeTags(open []string) string {
	var sb strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString("</" + tagName(open[i][1:]) + ">")
	}
	return sb.String()
}

func tagName(s string) string {
	if end := strings.IndexAny(s, " \t\n>"); end >= 0 {
		return s[:end]
	}
	return s
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
