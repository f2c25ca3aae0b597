package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

const DefaultTemperature = 0.7

type CompleterConfig struct {
	Provider string        // метка для логов и метрик
	Timeout  time.Duration // на один вызов
}

// Completer - обертка над провайдером: валидация параметров, таймаут,
// метрики и приведение ошибок к domain.ErrCompletionFailed.
// Состояния между вызовами нет, безопасен для конкурентного использования.
type Completer struct {
	client   Client
	provider string
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewCompleter(client Client, cfg CompleterConfig, logger *zap.Logger, m *metrics.Metrics) *Completer {
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		client:   client,
		provider: cfg.Provider,
		timeout:  cfg.Timeout,
		logger:   logger,
		metrics:  m,
	}
}

func (c *Completer) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return c.CompleteRequest(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}

func (c *Completer) CompleteRequest(ctx context.Context, req Request) (string, error) {
	if req.MaxTokens <= 0 {
		return "", fmt.Errorf("%w: max tokens %d", ErrInvalidParams, req.MaxTokens)
	}
	if req.Temperature < 0 || req.Temperature > 1 {
		return "", fmt.Errorf("%w: temperature %.2f", ErrInvalidParams, req.Temperature)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.client.Complete(ctx, req)
	if err != nil {
		c.record("error", start)
		c.logger.Warn("completion failed",
			zap.String("provider", c.provider),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s: %w", domain.ErrCompletionFailed, c.provider, err)
	}

	c.record("success", start)
	c.logger.Debug("completion done",
		zap.String("provider", c.provider),
		zap.Int("prompt_length", len(req.Prompt)),
		zap.Int("response_length", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

func (c *Completer) record(status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordLLMRequest(c.provider, status, time.Since(start))
	}
}
