package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/prompt"
)

// DefaultSubQueries - декомпозиция по умолчанию: основы, свежие события, применение
var DefaultSubQueries = []string{
	"{topic} core fundamentals",
	"{topic} latest developments",
	"{topic} applications and industry impact",
}

const (
	DefaultResultsPerQuery = 3
	DefaultMaxTokens       = 1200
	DefaultTemperature     = 0.7
)

type Config struct {
	SubQueries      []string // шаблоны с {topic}
	ResultsPerQuery int
	MaxTokens       int
	Temperature     float64
}

func DefaultConfig() Config {
	return Config{
		SubQueries:      DefaultSubQueries,
		ResultsPerQuery: DefaultResultsPerQuery,
		MaxTokens:       DefaultMaxTokens,
		Temperature:     DefaultTemperature,
	}
}

// Coordinator - мультиагентное исследование: подзапросы ищутся параллельно,
// потом один синтез по всем найденным источникам.
type Coordinator struct {
	search Searcher
	llm    Completer
	cfg    Config
	logger *zap.Logger
}

func NewCoordinator(s Searcher, c Completer, cfg Config, logger *zap.Logger) *Coordinator {
	def := DefaultConfig()
	if len(cfg.SubQueries) == 0 {
		cfg.SubQueries = def.SubQueries
	}
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = def.ResultsPerQuery
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{search: s, llm: c, cfg: cfg, logger: logger}
}

// Agents строит подагентов для темы в порядке шаблонов, индексы с 1
func (c *Coordinator) Agents(topic string) []*SubAgent {
	agents := make([]*SubAgent, len(c.cfg.SubQueries))
	for i, tmpl := range c.cfg.SubQueries {
		agents[i] = NewSubAgent(i+1, prompt.Render(tmpl, topic), c.cfg.ResultsPerQuery, c.search)
	}
	return agents
}

func (c *Coordinator) Process(ctx context.Context, topic string) (*domain.SynthesisReport, error) {
	start := time.Now()
	agents := c.Agents(topic)

	subtasks, err := c.runParallel(ctx, agents)
	if err != nil {
		return nil, err
	}

	sources := 0
	var all []domain.Source
	for _, st := range subtasks {
		all = append(all, st.Sources...)
		sources += len(st.Sources)
	}

	c.logger.Info("subtasks collected",
		zap.String("topic", topic),
		zap.Int("subtasks", len(subtasks)),
		zap.Int("sources", sources),
	)

	// синтез вызываем всегда, даже если ничего не нашлось
	synthesis, err := c.llm.Complete(ctx, synthesisPrompt(topic, prompt.ContextBlock(all, 0)), c.cfg.MaxTokens, c.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	c.logger.Debug("multi-agent research done",
		zap.String("topic", topic),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.SynthesisReport{
		Synthesis: synthesis,
		Subtasks:  subtasks,
	}, nil
}

// runParallel: каждый агент пишет в свой слот, так порядок не зависит от того,
// кто закончил первым. Первая ошибка отменяет остальных.
func (c *Coordinator) runParallel(ctx context.Context, agents []*SubAgent) ([]domain.Subtask, error) {
	results := make([]domain.Subtask, len(agents))
	g, gctx := errgroup.WithContext(ctx)

	for i, a := range agents {
		g.Go(func() error {
			st, err := a.Run(gctx)
			if err != nil {
				c.logger.Warn("subagent failed",
					zap.Int("subtask", a.Index()),
					zap.String("focus", a.Focus()),
					zap.Error(err),
				)
				return err
			}
			results[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func synthesisPrompt(topic, contextBlock string) string {
	return `ORIGINAL QUERY: ` + topic + `

Research Data:
` + contextBlock + `

Provide:

EXECUTIVE SUMMARY:
(2-3 strong sentences)

INTEGRATED FINDINGS:
• Key foundational insight
• Key recent development
• Key real-world application
• Cross-cutting strategic insight

STRATEGIC IMPLICATIONS:
(Short forward-looking insight)`
}
