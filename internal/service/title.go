package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/llm"
)

const titleSystemPrompt = "Generate a short 4-6 word title for this research topic."

// TitleCompleter - вызов модели с system-промптом и своей моделью (llm.Completer)
type TitleCompleter interface {
	CompleteRequest(ctx context.Context, req llm.Request) (string, error)
}

type TitleConfig struct {
	Model       string // пусто - модель провайдера по умолчанию
	MaxTokens   int
	FallbackLen int
}

func DefaultTitleConfig() TitleConfig {
	return TitleConfig{MaxTokens: 20, FallbackLen: 30}
}

// TitleService придумывает название разговора по первому сообщению.
// Никогда не возвращает ошибку: при любом сбое берется начало темы.
type TitleService struct {
	llm    TitleCompleter
	cfg    TitleConfig
	logger *zap.Logger
}

func NewTitleService(c TitleCompleter, cfg TitleConfig, logger *zap.Logger) *TitleService {
	def := DefaultTitleConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.FallbackLen <= 0 {
		cfg.FallbackLen = def.FallbackLen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TitleService{llm: c, cfg: cfg, logger: logger}
}

func (s *TitleService) Generate(ctx context.Context, topic string) string {
	fallback := domain.Truncate(strings.TrimSpace(topic), s.cfg.FallbackLen)
	if s.llm == nil {
		return fallback
	}

	title, err := s.llm.CompleteRequest(ctx, llm.Request{
		Model:       s.cfg.Model,
		System:      titleSystemPrompt,
		Prompt:      topic,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: llm.DefaultTemperature,
	})
	if err != nil {
		s.logger.Debug("title generation failed, using fallback", zap.Error(err))
		return fallback
	}

	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" {
		return fallback
	}
	return title
}
