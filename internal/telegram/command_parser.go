package telegram

import (
	"strings"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// ParseResearchCommand: /depth и /multi задают режим явно,
// /research и обычный текст идут в defaultMode.
func ParseResearchCommand(text string, defaultMode domain.Mode) (topic string, mode domain.Mode) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", defaultMode
	}

	if !strings.HasPrefix(text, "/") {
		return normalizeSpaces(text), defaultMode
	}

	parts := strings.SplitN(text, " ", 2)
	command := strings.ToLower(parts[0])
	// в группах команда приходит как /depth@botname
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	var rest string
	if len(parts) > 1 {
		rest = normalizeSpaces(parts[1])
	}

	switch command {
	case "/depth", "/deep":
		return rest, domain.ModeDepth
	case "/multi":
		return rest, domain.ModeMulti
	case "/research":
		return rest, defaultMode
	default:
		return text, defaultMode
	}
}

// IsResearchCommand - команды, за которыми идет тема исследования
func IsResearchCommand(cmd string) bool {
	switch strings.ToLower(cmd) {
	case "depth", "deep", "multi", "research":
		return true
	}
	return false
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
