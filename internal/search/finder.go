package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

const (
	DefaultExcerptLen = 600
	DefaultMaxResults = 25
)

type FinderConfig struct {
	Provider   string
	Timeout    time.Duration
	ExcerptLen int
	MaxResults int // верхняя граница count
}

// Finder превращает ответ провайдера в список domain.Source.
// Один вызов = один запрос к провайдеру, без повторов.
type Finder struct {
	client     SearchClient
	provider   string
	timeout    time.Duration
	excerptLen int
	maxResults int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewFinder(client SearchClient, cfg FinderConfig, logger *zap.Logger, m *metrics.Metrics) *Finder {
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ExcerptLen <= 0 {
		cfg.ExcerptLen = DefaultExcerptLen
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{
		client:     client,
		provider:   cfg.Provider,
		timeout:    cfg.Timeout,
		excerptLen: cfg.ExcerptLen,
		maxResults: cfg.MaxResults,
		logger:     logger,
		metrics:    m,
	}
}

// Search возвращает до count источников в порядке выдачи провайдера.
// Результаты без текста отбрасываются, поэтому их может быть меньше count.
func (f *Finder) Search(ctx context.Context, query string, count int) ([]domain.Source, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, ErrEmptyQuery)
	}
	if count < 1 || count > f.maxResults {
		return nil, fmt.Errorf("%w: %w: %d", domain.ErrSearchFailed, ErrInvalidCount, count)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.client.Search(ctx, SearchRequest{Query: query, MaxResults: count})
	if err != nil {
		f.record("error", start)
		f.logger.Warn("search failed",
			zap.String("provider", f.provider),
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, f.provider, err)
	}
	f.record("success", start)

	sources := make([]domain.Source, 0, len(resp.Results))
	dropped := 0
	for _, r := range resp.Results {
		if len(sources) == count {
			break
		}
		if strings.TrimSpace(r.Content) == "" {
			dropped++
			continue
		}
		sources = append(sources, domain.Source{
			Title:   r.Title,
			URL:     r.URL,
			Excerpt: domain.Truncate(r.Content, f.excerptLen),
		})
	}

	if dropped > 0 && f.metrics != nil {
		f.metrics.RecordDroppedResults(dropped)
	}

	f.logger.Debug("search done",
		zap.String("provider", f.provider),
		zap.String("query", query),
		zap.Int("requested", count),
		zap.Int("returned", len(sources)),
		zap.Int("dropped", dropped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sources, nil
}

func (f *Finder) record(status string, start time.Time) {
	if f.metrics != nil {
		f.metrics.RecordSearchRequest(f.provider, status, time.Since(start))
	}
}
