package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_DEBUG",
	"SEARCH_PROVIDER", "EXA_API_KEY", "EXA_BASE_URL", "TAVILY_API_KEY", "TAVILY_BASE_URL",
	"SEARCH_EXCERPT_LEN", "SEARCH_TIMEOUT_SEC",
	"LLM_PROVIDER", "CEREBRAS_API_KEY", "CEREBRAS_MODEL", "CEREBRAS_BASE_URL",
	"OPENROUTER_API_KEY", "OPENROUTER_MODEL", "OPENROUTER_BASE_URL",
	"GIGACHAT_AUTH_KEY", "GIGACHAT_CLIENT_ID", "GIGACHAT_CLIENT_SECRET", "GIGACHAT_INSECURE_TLS",
	"LLM_TIMEOUT_SEC", "LLM_TEMPERATURE", "LLM_FOLLOWUP_TEMPERATURE",
	"LAYERED_INITIAL_COUNT", "LAYERED_FOLLOWUP_COUNT", "LAYERED_PREVIEW_COUNT",
	"LAYERED_PREVIEW_LEN", "LAYERED_CONTEXT_LIMIT",
	"LAYERED_FOLLOWUP_MAX_TOKENS", "LAYERED_REPORT_MAX_TOKENS",
	"MULTIAGENT_SUBQUERIES", "MULTIAGENT_RESULTS_PER_QUERY", "MULTIAGENT_MAX_TOKENS",
	"TITLE_MODEL", "TITLE_MAX_TOKENS", "TITLE_FALLBACK_LEN",
	"RESEARCH_TIMEOUT_SEC", "CACHE_ENABLED", "CACHE_TTL_SEC",
	"DEFAULT_MODE", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
}

func clearEnvVars() {
	for _, k := range envKeys {
		os.Unsetenv(k)
	}
}

func setEnv(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "exa + cerebras",
			envVars: map[string]string{"EXA_API_KEY": "exa", "CEREBRAS_API_KEY": "cb"},
		},
		{
			name: "tavily + openrouter",
			envVars: map[string]string{
				"SEARCH_PROVIDER": "tavily", "TAVILY_API_KEY": "tv",
				"LLM_PROVIDER": "openrouter", "OPENROUTER_API_KEY": "or",
			},
		},
		{
			name: "gigachat with client credentials",
			envVars: map[string]string{
				"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "gigachat",
				"GIGACHAT_CLIENT_ID": "id", "GIGACHAT_CLIENT_SECRET": "secret",
			},
		},
		{
			name:    "mocks need no keys",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock"},
		},
		{
			name:    "missing exa key",
			envVars: map[string]string{"CEREBRAS_API_KEY": "cb"},
			wantErr: ErrMissingSearchKey,
		},
		{
			name:    "missing cerebras key",
			envVars: map[string]string{"EXA_API_KEY": "exa"},
			wantErr: ErrMissingLLMKey,
		},
		{
			name:    "gigachat without secret",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "gigachat", "GIGACHAT_CLIENT_ID": "id"},
			wantErr: ErrMissingLLMKey,
		},
		{
			name:    "unknown search provider",
			envVars: map[string]string{"SEARCH_PROVIDER": "bing", "LLM_PROVIDER": "mock"},
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "unknown llm provider",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "gpt"},
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "bad default mode",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "DEFAULT_MODE": "wide"},
			wantErr: ErrInvalidMode,
		},
		{
			name:    "temperature out of range",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "LLM_TEMPERATURE": "1.5"},
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "zero count",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "LAYERED_INITIAL_COUNT": "0"},
			wantErr: ErrInvalidCounts,
		},
		{
			name:    "initial count above search limit",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "LAYERED_INITIAL_COUNT": "26"},
			wantErr: ErrInvalidCounts,
		},
		{
			name:    "follow-up count above search limit",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "LAYERED_FOLLOWUP_COUNT": "100"},
			wantErr: ErrInvalidCounts,
		},
		{
			name:    "results per query above search limit",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "MULTIAGENT_RESULTS_PER_QUERY": "30"},
			wantErr: ErrInvalidCounts,
		},
		{
			name:    "counts at search limit",
			envVars: map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "mock", "LAYERED_INITIAL_COUNT": "25", "MULTIAGENT_RESULTS_PER_QUERY": "25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			setEnv(tt.envVars)
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error = %v", err)
			}
			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars()
	setEnv(map[string]string{"EXA_API_KEY": "exa", "CEREBRAS_API_KEY": "cb"})
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Search.Provider != "exa" || cfg.LLM.Provider != "cerebras" {
		t.Errorf("providers = %s/%s", cfg.Search.Provider, cfg.LLM.Provider)
	}
	if cfg.LLM.Cerebras.Model != "llama-3.3-70b" {
		t.Errorf("Cerebras.Model = %q", cfg.LLM.Cerebras.Model)
	}
	if cfg.Search.ExcerptLen != 600 {
		t.Errorf("ExcerptLen = %d, want 600", cfg.Search.ExcerptLen)
	}

	l := cfg.Layered
	if l.InitialCount != 6 || l.FollowUpCount != 4 || l.PreviewCount != 4 || l.PreviewLen != 250 || l.ContextLimit != 8 {
		t.Errorf("Layered = %+v", l)
	}
	if l.FollowUpMaxTokens != 60 || l.ReportMaxTokens != 1200 {
		t.Errorf("Layered tokens = %d/%d", l.FollowUpMaxTokens, l.ReportMaxTokens)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.FollowUpTemperature != 0.7 {
		t.Errorf("temperatures = %v/%v", cfg.LLM.Temperature, cfg.LLM.FollowUpTemperature)
	}

	if len(cfg.MultiAgent.SubQueries) != 3 || cfg.MultiAgent.SubQueries[0] != "{topic} core fundamentals" {
		t.Errorf("SubQueries = %v", cfg.MultiAgent.SubQueries)
	}
	if cfg.MultiAgent.ResultsPerQuery != 3 || cfg.MultiAgent.MaxTokens != 1200 {
		t.Errorf("MultiAgent = %+v", cfg.MultiAgent)
	}

	if cfg.Title.Model != "llama3.1-8b" || cfg.Title.MaxTokens != 20 || cfg.Title.FallbackLen != 30 {
		t.Errorf("Title = %+v", cfg.Title)
	}
	if cfg.Timeouts.Search != 30*time.Second || cfg.Timeouts.LLM != 60*time.Second || cfg.Timeouts.Research != 180*time.Second {
		t.Errorf("Timeouts = %+v", cfg.Timeouts)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "info" || cfg.Metrics.Addr != ":9090" {
		t.Errorf("Log/Metrics = %+v %+v", cfg.Log, cfg.Metrics)
	}
	if cfg.Mode() != domain.ModeDepth {
		t.Errorf("Mode() = %v, want depth", cfg.Mode())
	}
	if !cfg.LLM.GigaChat.InsecureTLS {
		t.Error("GigaChat.InsecureTLS should default to true")
	}
}

func TestTitleModelDefault(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    string
	}{
		{"cerebras gets small model", map[string]string{"SEARCH_PROVIDER": "mock", "CEREBRAS_API_KEY": "cb"}, "llama3.1-8b"},
		{"openrouter uses provider model", map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "openrouter", "OPENROUTER_API_KEY": "or"}, ""},
		{"gigachat uses provider model", map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "gigachat", "GIGACHAT_AUTH_KEY": "key"}, ""},
		{"explicit model wins", map[string]string{"SEARCH_PROVIDER": "mock", "LLM_PROVIDER": "openrouter", "OPENROUTER_API_KEY": "or", "TITLE_MODEL": "small"}, "small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			setEnv(tt.envVars)
			defer clearEnvVars()

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Title.Model != tt.want {
				t.Errorf("Title.Model = %q, want %q", cfg.Title.Model, tt.want)
			}
		})
	}
}

func TestValidateBot(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateBot(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("ValidateBot() error = %v, want ErrMissingToken", err)
	}

	cfg.Telegram.Token = "token"
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("ValidateBot() error = %v", err)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		value string
		want  domain.Mode
	}{
		{"depth", domain.ModeDepth},
		{"multi", domain.ModeMulti},
		{"multi-agent", domain.ModeMulti},
		{"garbage", domain.ModeDepth},
	}

	for _, tt := range tests {
		cfg := &Config{DefaultMode: tt.value}
		if got := cfg.Mode(); got != tt.want {
			t.Errorf("Mode(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvFloatAndBool(t *testing.T) {
	os.Setenv("TEST_FLOAT", "0.25")
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_FLOAT")
	defer os.Unsetenv("TEST_BOOL")

	if got := getEnvFloatOrDefault("TEST_FLOAT", 0.7); got != 0.25 {
		t.Errorf("getEnvFloatOrDefault() = %v", got)
	}
	if got := getEnvFloatOrDefault("TEST_FLOAT_MISSING", 0.7); got != 0.7 {
		t.Errorf("getEnvFloatOrDefault(missing) = %v", got)
	}
	if got := getEnvBoolOrDefault("TEST_BOOL", false); !got {
		t.Error("getEnvBoolOrDefault() = false")
	}

	os.Setenv("TEST_BOOL", "nope")
	if got := getEnvBoolOrDefault("TEST_BOOL", true); !got {
		t.Error("getEnvBoolOrDefault(invalid) should return default")
	}
}

func TestGetEnvListOrDefault(t *testing.T) {
	def := []string{"a"}

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"unset", "", def},
		{"split and trim", " {topic} history ; {topic} risks ;", []string{"{topic} history", "{topic} risks"}},
		{"only separators", " ; ; ", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_LIST", tt.value)
			defer os.Unsetenv("TEST_LIST")

			got := getEnvListOrDefault("TEST_LIST", ";", def)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
