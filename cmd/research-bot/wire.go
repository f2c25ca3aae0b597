package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/agent"
	"github.com/kitbuilder587/research-assistant/internal/cache/memory"
	"github.com/kitbuilder587/research-assistant/internal/config"
	"github.com/kitbuilder587/research-assistant/internal/llm"
	"github.com/kitbuilder587/research-assistant/internal/llm/cerebras"
	"github.com/kitbuilder587/research-assistant/internal/llm/gigachat"
	llmmock "github.com/kitbuilder587/research-assistant/internal/llm/mock"
	"github.com/kitbuilder587/research-assistant/internal/llm/openrouter"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
	"github.com/kitbuilder587/research-assistant/internal/search"
	"github.com/kitbuilder587/research-assistant/internal/search/exa"
	searchmock "github.com/kitbuilder587/research-assistant/internal/search/mock"
	"github.com/kitbuilder587/research-assistant/internal/search/tavily"
	"github.com/kitbuilder587/research-assistant/internal/service"
)

type app struct {
	Research *service.ResearchService
	Titles   *service.TitleService
}

// buildApp собирает все зависимости из конфига. m может быть nil.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*app, error) {
	searchClient, err := newSearchClient(ctx, cfg, logger, m)
	if err != nil {
		return nil, err
	}
	finder := search.NewFinder(searchClient, search.FinderConfig{
		Provider:   cfg.Search.Provider,
		Timeout:    cfg.Timeouts.Search,
		ExcerptLen: cfg.Search.ExcerptLen,
	}, logger, m)

	llmClient, err := newLLMClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	completer := llm.NewCompleter(llmClient, llm.CompleterConfig{
		Provider: cfg.LLM.Provider,
		Timeout:  cfg.Timeouts.LLM,
	}, logger, m)

	layered := service.NewLayeredResearcher(finder, completer, service.LayeredConfig{
		InitialCount:        cfg.Layered.InitialCount,
		FollowUpCount:       cfg.Layered.FollowUpCount,
		PreviewCount:        cfg.Layered.PreviewCount,
		PreviewLen:          cfg.Layered.PreviewLen,
		ContextLimit:        cfg.Layered.ContextLimit,
		FollowUpMaxTokens:   cfg.Layered.FollowUpMaxTokens,
		ReportMaxTokens:     cfg.Layered.ReportMaxTokens,
		Temperature:         cfg.LLM.Temperature,
		FollowUpTemperature: cfg.LLM.FollowUpTemperature,
	}, logger)

	coordinator := agent.NewCoordinator(finder, completer, agent.Config{
		SubQueries:      cfg.MultiAgent.SubQueries,
		ResultsPerQuery: cfg.MultiAgent.ResultsPerQuery,
		MaxTokens:       cfg.MultiAgent.MaxTokens,
		Temperature:     cfg.LLM.Temperature,
	}, logger)

	research := service.NewResearchService(service.ResearchDeps{
		Layered:    layered,
		MultiAgent: coordinator,
		Logger:     logger,
		Metrics:    m,
		Timeout:    cfg.Timeouts.Research,
	})

	titles := service.NewTitleService(completer, service.TitleConfig{
		Model:       cfg.Title.Model,
		MaxTokens:   cfg.Title.MaxTokens,
		FallbackLen: cfg.Title.FallbackLen,
	}, logger)

	return &app{Research: research, Titles: titles}, nil
}

func newSearchClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (search.SearchClient, error) {
	var client search.SearchClient
	switch cfg.Search.Provider {
	case "exa":
		client = exa.New(exa.Config{
			APIKey:  cfg.Search.Exa.APIKey,
			BaseURL: cfg.Search.Exa.BaseURL,
			Timeout: cfg.Timeouts.Search,
		}, logger)
	case "tavily":
		client = tavily.New(tavily.Config{
			APIKey:  cfg.Search.Tavily.APIKey,
			BaseURL: cfg.Search.Tavily.BaseURL,
			Timeout: cfg.Timeouts.Search,
		}, logger)
	case "mock":
		client = searchmock.New().WithResults(demoResults)
	default:
		return nil, fmt.Errorf("%w: search %q", config.ErrInvalidProvider, cfg.Search.Provider)
	}

	if !cfg.Cache.Enabled {
		return client, nil
	}
	logger.Info("search cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	store := memory.NewWithContext[[]search.SearchResult](ctx, time.Minute)
	return search.NewCached(client, store, cfg.Cache.TTL, m), nil
}

func newLLMClient(cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "cerebras":
		return cerebras.New(cerebras.Config{
			APIKey:  cfg.LLM.Cerebras.APIKey,
			Model:   cfg.LLM.Cerebras.Model,
			BaseURL: cfg.LLM.Cerebras.BaseURL,
			Timeout: cfg.Timeouts.LLM,
		}, logger), nil
	case "openrouter":
		return openrouter.New(openrouter.Config{
			APIKey:  cfg.LLM.OpenRouter.APIKey,
			Model:   cfg.LLM.OpenRouter.Model,
			BaseURL: cfg.LLM.OpenRouter.BaseURL,
			Timeout: cfg.Timeouts.LLM,
		}, logger), nil
	case "gigachat":
		g := cfg.LLM.GigaChat
		return gigachat.New(gigachat.Config{
			AuthKey:      g.AuthKey,
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			Scope:        g.Scope,
			Model:        g.Model,
			AuthURL:      g.AuthURL,
			BaseURL:      g.BaseURL,
			Timeout:      cfg.Timeouts.LLM,
			InsecureTLS:  g.InsecureTLS,
		}, logger), nil
	case "mock":
		return llmmock.New(), nil
	default:
		return nil, fmt.Errorf("%w: llm %q", config.ErrInvalidProvider, cfg.LLM.Provider)
	}
}

// demoResults - выдача mock-провайдера, чтобы прогнать пайплайн без ключей
var demoResults = []search.SearchResult{
	{
		Title:   "Example overview",
		URL:     "https://example.com/overview",
		Content: "Offline demo result. Configure SEARCH_PROVIDER=exa or tavily for real web search.",
	},
	{
		Title:   "Example deep dive",
		URL:     "https://example.com/deep-dive",
		Content: "Second offline demo result used by the mock search provider.",
	},
}
