package agent

import (
	"context"
	"fmt"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// Searcher - поиск, возвращающий готовые источники (search.Finder)
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]domain.Source, error)
}

// Completer - одиночный вызов модели (llm.Completer)
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// SubAgent отвечает за один угол декомпозиции: свой подзапрос и свои источники
type SubAgent struct {
	index  int
	focus  string
	count  int
	search Searcher
}

func NewSubAgent(index int, focus string, count int, s Searcher) *SubAgent {
	return &SubAgent{index: index, focus: focus, count: count, search: s}
}

func (a *SubAgent) Index() int    { return a.index }
func (a *SubAgent) Focus() string { return a.focus }

func (a *SubAgent) Run(ctx context.Context) (domain.Subtask, error) {
	sources, err := a.search.Search(ctx, a.focus, a.count)
	if err != nil {
		return domain.Subtask{}, fmt.Errorf("subtask %d: %w", a.index, err)
	}
	return domain.Subtask{
		Index:   a.index,
		Focus:   a.focus,
		Sources: sources,
	}, nil
}
