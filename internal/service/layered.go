package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/prompt"
)

// Searcher - поиск с готовыми источниками (search.Finder)
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]domain.Source, error)
}

// Completer - одиночный вызов модели (llm.Completer)
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

type LayeredConfig struct {
	InitialCount        int
	FollowUpCount       int
	PreviewCount        int
	PreviewLen          int
	ContextLimit        int
	FollowUpMaxTokens   int
	ReportMaxTokens     int
	Temperature         float64
	FollowUpTemperature float64
}

func DefaultLayeredConfig() LayeredConfig {
	return LayeredConfig{
		InitialCount:        6,
		FollowUpCount:       4,
		PreviewCount:        4,
		PreviewLen:          250,
		ContextLimit:        8,
		FollowUpMaxTokens:   60,
		ReportMaxTokens:     1200,
		Temperature:         0.7,
		FollowUpTemperature: 0.7,
	}
}

// LayeredResearcher - двухслойный поиск: первый слой по теме, модель
// придумывает уточняющий запрос, второй слой по нему, потом отчет.
// Строго последовательный, состояния между вызовами нет.
type LayeredResearcher struct {
	search Searcher
	llm    Completer
	cfg    LayeredConfig
	logger *zap.Logger
}

func NewLayeredResearcher(s Searcher, c Completer, cfg LayeredConfig, logger *zap.Logger) *LayeredResearcher {
	def := DefaultLayeredConfig()
	if cfg.InitialCount <= 0 {
		cfg.InitialCount = def.InitialCount
	}
	if cfg.FollowUpCount <= 0 {
		cfg.FollowUpCount = def.FollowUpCount
	}
	if cfg.PreviewCount <= 0 {
		cfg.PreviewCount = def.PreviewCount
	}
	if cfg.PreviewLen <= 0 {
		cfg.PreviewLen = def.PreviewLen
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = def.ContextLimit
	}
	if cfg.FollowUpMaxTokens <= 0 {
		cfg.FollowUpMaxTokens = def.FollowUpMaxTokens
	}
	if cfg.ReportMaxTokens <= 0 {
		cfg.ReportMaxTokens = def.ReportMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayeredResearcher{search: s, llm: c, cfg: cfg, logger: logger}
}

func (r *LayeredResearcher) Run(ctx context.Context, topic string) (*domain.ResearchReport, error) {
	start := time.Now()

	layer1, err := r.search.Search(ctx, topic, r.cfg.InitialCount)
	if err != nil {
		return nil, fmt.Errorf("layer 1: %w", err)
	}
	if len(layer1) == 0 {
		r.logger.Info("no sources for topic", zap.String("topic", topic))
		return domain.EmptyReport(), nil
	}

	preview := prompt.Preview(layer1, r.cfg.PreviewCount, r.cfg.PreviewLen)
	raw, err := r.llm.Complete(ctx, followUpPrompt(preview, topic), r.cfg.FollowUpMaxTokens, r.cfg.FollowUpTemperature)
	if err != nil {
		return nil, fmt.Errorf("follow-up query: %w", err)
	}
	followUp := prompt.CleanQuery(raw)

	var layer2 []domain.Source
	if followUp == "" {
		// пустой запрос поисковику не отправляем, второй слой просто пустой
		r.logger.Warn("empty follow-up query", zap.String("topic", topic), zap.String("raw", raw))
	} else {
		layer2, err = r.search.Search(ctx, followUp, r.cfg.FollowUpCount)
		if err != nil {
			return nil, fmt.Errorf("layer 2: %w", err)
		}
	}

	all := make([]domain.Source, 0, len(layer1)+len(layer2))
	all = append(all, layer1...)
	all = append(all, layer2...)

	report, err := r.llm.Complete(ctx, reportPrompt(prompt.ContextBlock(all, r.cfg.ContextLimit)), r.cfg.ReportMaxTokens, r.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("final report: %w", err)
	}

	r.logger.Debug("layered research done",
		zap.String("topic", topic),
		zap.String("follow_up", followUp),
		zap.Int("layer1", len(layer1)),
		zap.Int("layer2", len(layer2)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.ResearchReport{Narrative: report, Sources: all}, nil
}

func followUpPrompt(preview, topic string) string {
	return `Based on this research preview:

` + preview + `

What is the best follow-up search query to deepen understanding of:
"` + topic + `"

Respond with only the search query.`
}

func reportPrompt(contextBlock string) string {
	return `Using all research below:

` + contextBlock + `

Provide:

SUMMARY:
(3-4 professional sentences)

KEY INSIGHTS:
- Insight 1
- Insight 2
- Insight 3
- Insight 4

DEPTH GAINED:
(1 sentence explaining what new understanding the follow-up search added)`
}
