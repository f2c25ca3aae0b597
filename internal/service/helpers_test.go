package service

import (
	"fmt"

	"github.com/kitbuilder587/research-assistant/internal/llm"
	"github.com/kitbuilder587/research-assistant/internal/search"
)

func newFinder(client search.SearchClient) *search.Finder {
	return search.NewFinder(client, search.FinderConfig{Provider: "mock"}, nil, nil)
}

func newCompleter(client llm.Client) *llm.Completer {
	return llm.NewCompleter(client, llm.CompleterConfig{Provider: "mock"}, nil, nil)
}

func hits(prefix string, n int) []search.SearchResult {
	out := make([]search.SearchResult, n)
	for i := range out {
		out[i] = search.SearchResult{
			Title:   fmt.Sprintf("%s %d", prefix, i+1),
			URL:     fmt.Sprintf("https://example.com/%s/%d", prefix, i+1),
			Content: fmt.Sprintf("%s content %d", prefix, i+1),
		}
	}
	return out
}
