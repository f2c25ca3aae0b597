package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/search"
)

var (
	ErrMissingToken       = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingSearchKey   = errors.New("search provider API key is required")
	ErrMissingLLMKey      = errors.New("LLM provider credentials are required")
	ErrInvalidProvider    = errors.New("unknown provider")
	ErrInvalidMode        = errors.New("invalid default mode")
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 1")
	ErrInvalidCounts      = errors.New("result counts and token limits must be positive")
)

type Config struct {
	Telegram    TelegramConfig
	Search      SearchConfig
	LLM         LLMConfig
	Layered     LayeredConfig
	MultiAgent  MultiAgentConfig
	Title       TitleConfig
	Log         LogConfig
	Cache       CacheConfig
	Metrics     MetricsConfig
	Timeouts    TimeoutConfig
	DefaultMode string
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type SearchConfig struct {
	Provider   string // exa | tavily | mock
	Exa        ExaConfig
	Tavily     TavilyConfig
	ExcerptLen int
}

type ExaConfig struct {
	APIKey  string
	BaseURL string
}

type TavilyConfig struct {
	APIKey  string
	BaseURL string
}

type LLMConfig struct {
	Provider            string // cerebras | openrouter | gigachat | mock
	Cerebras            CerebrasConfig
	OpenRouter          OpenRouterConfig
	GigaChat            GigaChatConfig
	Temperature         float64
	FollowUpTemperature float64
}

type CerebrasConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GigaChatConfig struct {
	AuthKey      string
	ClientID     string
	ClientSecret string
	Scope        string
	Model        string
	AuthURL      string
	BaseURL      string
	InsecureTLS  bool
}

type LayeredConfig struct {
	InitialCount      int
	FollowUpCount     int
	PreviewCount      int
	PreviewLen        int
	ContextLimit      int
	FollowUpMaxTokens int
	ReportMaxTokens   int
}

type MultiAgentConfig struct {
	SubQueries      []string
	ResultsPerQuery int
	MaxTokens       int
}

type TitleConfig struct {
	Model       string
	MaxTokens   int
	FallbackLen int
}

type LogConfig struct {
	Level  string
	Format string // json | console, пусто - по уровню
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type MetricsConfig struct {
	Addr string
}

type TimeoutConfig struct {
	Search   time.Duration
	LLM      time.Duration
	Research time.Duration
}

var defaultSubQueries = []string{
	"{topic} core fundamentals",
	"{topic} latest developments",
	"{topic} applications and industry impact",
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvBoolOrDefault("TELEGRAM_DEBUG", false),
		},
		Search: SearchConfig{
			Provider: getEnvOrDefault("SEARCH_PROVIDER", "exa"),
			Exa: ExaConfig{
				APIKey:  os.Getenv("EXA_API_KEY"),
				BaseURL: getEnvOrDefault("EXA_BASE_URL", "https://api.exa.ai"),
			},
			Tavily: TavilyConfig{
				APIKey:  os.Getenv("TAVILY_API_KEY"),
				BaseURL: getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
			},
			ExcerptLen: getEnvIntOrDefault("SEARCH_EXCERPT_LEN", 600),
		},
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "cerebras"),
			Cerebras: CerebrasConfig{
				APIKey:  os.Getenv("CEREBRAS_API_KEY"),
				Model:   getEnvOrDefault("CEREBRAS_MODEL", "llama-3.3-70b"),
				BaseURL: getEnvOrDefault("CEREBRAS_BASE_URL", "https://api.cerebras.ai/v1"),
			},
			OpenRouter: OpenRouterConfig{
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   getEnvOrDefault("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct"),
				BaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			},
			GigaChat: GigaChatConfig{
				AuthKey:      os.Getenv("GIGACHAT_AUTH_KEY"),
				ClientID:     os.Getenv("GIGACHAT_CLIENT_ID"),
				ClientSecret: os.Getenv("GIGACHAT_CLIENT_SECRET"),
				Scope:        getEnvOrDefault("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				Model:        getEnvOrDefault("GIGACHAT_MODEL", "GigaChat"),
				AuthURL:      getEnvOrDefault("GIGACHAT_AUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
				BaseURL:      getEnvOrDefault("GIGACHAT_BASE_URL", "https://gigachat.devices.sberbank.ru/api/v1"),
				InsecureTLS:  getEnvBoolOrDefault("GIGACHAT_INSECURE_TLS", true),
			},
			Temperature:         getEnvFloatOrDefault("LLM_TEMPERATURE", 0.7),
			FollowUpTemperature: getEnvFloatOrDefault("LLM_FOLLOWUP_TEMPERATURE", 0.7),
		},
		Layered: LayeredConfig{
			InitialCount:      getEnvIntOrDefault("LAYERED_INITIAL_COUNT", 6),
			FollowUpCount:     getEnvIntOrDefault("LAYERED_FOLLOWUP_COUNT", 4),
			PreviewCount:      getEnvIntOrDefault("LAYERED_PREVIEW_COUNT", 4),
			PreviewLen:        getEnvIntOrDefault("LAYERED_PREVIEW_LEN", 250),
			ContextLimit:      getEnvIntOrDefault("LAYERED_CONTEXT_LIMIT", 8),
			FollowUpMaxTokens: getEnvIntOrDefault("LAYERED_FOLLOWUP_MAX_TOKENS", 60),
			ReportMaxTokens:   getEnvIntOrDefault("LAYERED_REPORT_MAX_TOKENS", 1200),
		},
		MultiAgent: MultiAgentConfig{
			SubQueries:      getEnvListOrDefault("MULTIAGENT_SUBQUERIES", ";", defaultSubQueries),
			ResultsPerQuery: getEnvIntOrDefault("MULTIAGENT_RESULTS_PER_QUERY", 3),
			MaxTokens:       getEnvIntOrDefault("MULTIAGENT_MAX_TOKENS", 1200),
		},
		Title: TitleConfig{
			Model:       getEnvOrDefault("TITLE_MODEL", defaultTitleModel(getEnvOrDefault("LLM_PROVIDER", "cerebras"))),
			MaxTokens:   getEnvIntOrDefault("TITLE_MAX_TOKENS", 20),
			FallbackLen: getEnvIntOrDefault("TITLE_FALLBACK_LEN", 30),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: os.Getenv("LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Enabled: getEnvBoolOrDefault("CACHE_ENABLED", false),
			TTL:     time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
		Timeouts: TimeoutConfig{
			Search:   time.Duration(getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 30)) * time.Second,
			LLM:      time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SEC", 60)) * time.Second,
			Research: time.Duration(getEnvIntOrDefault("RESEARCH_TIMEOUT_SEC", 180)) * time.Second,
		},
		DefaultMode: getEnvOrDefault("DEFAULT_MODE", "depth"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет то, без чего не работает ни CLI, ни бот
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case "exa":
		if c.Search.Exa.APIKey == "" {
			return ErrMissingSearchKey
		}
	case "tavily":
		if c.Search.Tavily.APIKey == "" {
			return ErrMissingSearchKey
		}
	case "mock":
	default:
		return ErrInvalidProvider
	}

	switch c.LLM.Provider {
	case "cerebras":
		if c.LLM.Cerebras.APIKey == "" {
			return ErrMissingLLMKey
		}
	case "openrouter":
		if c.LLM.OpenRouter.APIKey == "" {
			return ErrMissingLLMKey
		}
	case "gigachat":
		g := c.LLM.GigaChat
		if g.AuthKey == "" && (g.ClientID == "" || g.ClientSecret == "") {
			return ErrMissingLLMKey
		}
	case "mock":
	default:
		return ErrInvalidProvider
	}

	if _, err := domain.ParseMode(c.DefaultMode); err != nil {
		return ErrInvalidMode
	}

	for _, t := range []float64{c.LLM.Temperature, c.LLM.FollowUpTemperature} {
		if t < 0 || t > 1 {
			return ErrInvalidTemperature
		}
	}

	counts := []int{
		c.Layered.InitialCount, c.Layered.FollowUpCount, c.Layered.PreviewCount,
		c.Layered.PreviewLen, c.Layered.ContextLimit, c.Layered.FollowUpMaxTokens,
		c.Layered.ReportMaxTokens, c.MultiAgent.ResultsPerQuery, c.MultiAgent.MaxTokens,
		c.Search.ExcerptLen, c.Title.MaxTokens, c.Title.FallbackLen,
	}
	for _, n := range counts {
		if n <= 0 {
			return ErrInvalidCounts
		}
	}
	if len(c.MultiAgent.SubQueries) == 0 {
		return ErrInvalidCounts
	}

	// больше этого Finder не отдаст, каждый запуск падал бы на поиске
	for _, n := range []int{c.Layered.InitialCount, c.Layered.FollowUpCount, c.MultiAgent.ResultsPerQuery} {
		if n > search.DefaultMaxResults {
			return ErrInvalidCounts
		}
	}

	return nil
}

// ValidateBot - дополнительные требования для режима бота
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Mode - режим по умолчанию, Validate уже гарантировал что он парсится
func (c *Config) Mode() domain.Mode {
	m, err := domain.ParseMode(c.DefaultMode)
	if err != nil {
		return domain.ModeDepth
	}
	return m
}

// defaultTitleModel - маленькая модель есть только у Cerebras,
// остальным пустая строка: провайдер возьмет свою модель по умолчанию
func defaultTitleModel(provider string) string {
	if provider == "cerebras" {
		return "llama3.1-8b"
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvListOrDefault режет значение по sep, пустые элементы выкидывает
func getEnvListOrDefault(key, sep string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
