package main

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// RenderMarkdown - тот же состав что и в телеграме, только в Markdown
func RenderMarkdown(res *domain.Result) string {
	if res == nil {
		return ""
	}

	var sb strings.Builder
	switch {
	case res.Layered != nil:
		sb.WriteString("## Research Report\n\n")
		sb.WriteString(strings.TrimSpace(res.Layered.Narrative))
		sb.WriteString("\n")
		if len(res.Layered.Sources) > 0 {
			sb.WriteString("\n### Sources\n\n")
			writeMarkdownLinks(&sb, res.Layered.Sources)
		}
	case res.Synthesis != nil:
		sb.WriteString("## Executive Synthesis\n\n")
		sb.WriteString(strings.TrimSpace(res.Synthesis.Synthesis))
		sb.WriteString("\n\n### Sources\n")
		for _, st := range res.Synthesis.Subtasks {
			fmt.Fprintf(&sb, "\n**Subtask %d (%s)**\n\n", st.Index, st.Focus)
			if len(st.Sources) == 0 {
				sb.WriteString("_nothing found_\n")
				continue
			}
			writeMarkdownLinks(&sb, st.Sources)
		}
	}
	return sb.String()
}

func writeMarkdownLinks(sb *strings.Builder, sources []domain.Source) {
	for _, s := range sources {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(sb, "- [%s](%s)\n", escapeBrackets(title), s.URL)
	}
}

func escapeBrackets(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
