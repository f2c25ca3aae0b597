package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/config"
	"github.com/kitbuilder587/research-assistant/internal/domain"
)

// chatServer принимает только модель accept и запоминает присланные модели
type chatServer struct {
	accept string

	mu     sync.Mutex
	models []string
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.models = append(s.models, req.Model)
	s.mu.Unlock()

	if req.Model != s.accept {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"unknown model"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Quantum Drug Discovery"}}]}`))
}

func (s *chatServer) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	for _, k := range []string{"TITLE_MODEL", "CACHE_ENABLED", "LAYERED_INITIAL_COUNT", "LAYERED_FOLLOWUP_COUNT", "MULTIAGENT_RESULTS_PER_QUERY", "DEFAULT_MODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("SEARCH_PROVIDER", "mock")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestBuildApp_TitleModel(t *testing.T) {
	tests := []struct {
		name  string
		model string // что принимает сервер
		env   func(url string) map[string]string
	}{
		{
			name:  "openrouter uses its configured model",
			model: "test/router-model",
			env: func(url string) map[string]string {
				return map[string]string{
					"LLM_PROVIDER":        "openrouter",
					"OPENROUTER_API_KEY":  "or",
					"OPENROUTER_BASE_URL": url,
					"OPENROUTER_MODEL":    "test/router-model",
				}
			},
		},
		{
			name:  "cerebras uses small title model",
			model: "llama3.1-8b",
			env: func(url string) map[string]string {
				return map[string]string{
					"LLM_PROVIDER":      "cerebras",
					"CEREBRAS_API_KEY":  "cb",
					"CEREBRAS_BASE_URL": url,
				}
			},
		},
		{
			name:  "explicit title model",
			model: "tiny-model",
			env: func(url string) map[string]string {
				return map[string]string{
					"LLM_PROVIDER":        "openrouter",
					"OPENROUTER_API_KEY":  "or",
					"OPENROUTER_BASE_URL": url,
					"TITLE_MODEL":         "tiny-model",
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &chatServer{accept: tt.model}
			ts := httptest.NewServer(srv)
			defer ts.Close()

			cfg := loadTestConfig(t, tt.env(ts.URL))
			app, err := buildApp(context.Background(), cfg, zap.NewNop(), nil)
			if err != nil {
				t.Fatalf("buildApp() error = %v", err)
			}

			got := app.Titles.Generate(context.Background(), "quantum computing in drug discovery")

			if got != "Quantum Drug Discovery" {
				t.Errorf("Generate() = %q, want generated title", got)
			}
			if sent := srv.sent(); len(sent) != 1 || sent[0] != tt.model {
				t.Errorf("models sent = %v, want [%s]", sent, tt.model)
			}
		})
	}
}

func TestBuildApp_MockProviders(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"LLM_PROVIDER": "mock", "CACHE_ENABLED": "true"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApp(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}

	res, err := app.Research.Run(ctx, domain.ResearchRequest{Topic: "grid storage", Mode: domain.ModeDepth})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Layered == nil || len(res.Layered.Sources) != 2*len(demoResults) {
		t.Errorf("report = %+v", res.Layered)
	}
}

func TestBuildApp_UnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.Provider = "bing"

	if _, err := buildApp(context.Background(), cfg, zap.NewNop(), nil); err == nil {
		t.Error("buildApp() expected error for unknown search provider")
	}
}
