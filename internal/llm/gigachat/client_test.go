package gigachat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/llm"
)

func newAuthServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Header.Get("RqUID") == "" {
			t.Error("missing RqUID header")
		}
		json.NewEncoder(w).Encode(authResponse{
			AccessToken: "test-token",
			ExpiresAt:   time.Now().Add(30 * time.Minute).UnixMilli(),
		})
	}))
}

func TestClient_Complete(t *testing.T) {
	var authCalls int32
	authServer := newAuthServer(t, &authCalls)
	defer authServer.Close()

	tests := []struct {
		name       string
		response   interface{}
		statusCode int
		wantErr    error
	}{
		{
			name: "successful completion",
			response: llm.ChatResponse{
				Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: "Test response"}}},
			},
			statusCode: http.StatusOK,
		},
		{
			name:       "rate limit",
			response:   map[string]string{"error": "rate limit"},
			statusCode: http.StatusTooManyRequests,
			wantErr:    llm.ErrRateLimit,
		},
		{
			name:       "empty response",
			response:   llm.ChatResponse{Choices: []llm.Choice{}},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-token" {
					t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
				}
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer apiServer.Close()

			client := New(Config{
				ClientID:     "test-id",
				ClientSecret: "test-secret",
				AuthURL:      authServer.URL,
				BaseURL:      apiServer.URL,
				Timeout:      5 * time.Second,
			}, zap.NewNop())

			result, err := client.Complete(context.Background(), llm.Request{Prompt: "prompt", MaxTokens: 10, Temperature: 0.7})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Complete() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() unexpected error = %v", err)
			}
			if result != "Test response" {
				t.Errorf("Complete() = %q", result)
			}
		})
	}
}

func TestClient_TokenCaching(t *testing.T) {
	var authCalls int32
	authServer := newAuthServer(t, &authCalls)
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.Choice{{Message: llm.Message{Content: "response"}}},
		})
	}))
	defer apiServer.Close()

	client := New(Config{AuthKey: "key", AuthURL: authServer.URL, BaseURL: apiServer.URL}, nil)

	for i := 0; i < 3; i++ {
		if _, err := client.Complete(context.Background(), llm.Request{Prompt: "p", MaxTokens: 1}); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}

	if n := atomic.LoadInt32(&authCalls); n != 1 {
		t.Errorf("auth calls = %d, want 1", n)
	}
}

func TestClient_RefreshesTokenOn401(t *testing.T) {
	var authCalls, apiCalls int32
	authServer := newAuthServer(t, &authCalls)
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&apiCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.Choice{{Message: llm.Message{Content: "ok"}}},
		})
	}))
	defer apiServer.Close()

	client := New(Config{AuthKey: "key", AuthURL: authServer.URL, BaseURL: apiServer.URL}, nil)

	got, err := client.Complete(context.Background(), llm.Request{Prompt: "p", MaxTokens: 1})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q", got)
	}
	if n := atomic.LoadInt32(&authCalls); n != 2 {
		t.Errorf("auth calls = %d, want 2 (initial + refresh)", n)
	}
}

func TestClient_PersistentUnauthorized(t *testing.T) {
	var authCalls int32
	authServer := newAuthServer(t, &authCalls)
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer apiServer.Close()

	client := New(Config{AuthKey: "key", AuthURL: authServer.URL, BaseURL: apiServer.URL}, nil)

	_, err := client.Complete(context.Background(), llm.Request{Prompt: "p", MaxTokens: 1})
	if !errors.Is(err, llm.ErrAuthFailed) {
		t.Errorf("Complete() error = %v, want ErrAuthFailed", err)
	}
}

func TestClient_AuthServerFailure(t *testing.T) {
	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer authServer.Close()

	client := New(Config{AuthKey: "key", AuthURL: authServer.URL, BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := client.Complete(context.Background(), llm.Request{Prompt: "p", MaxTokens: 1})
	if !errors.Is(err, llm.ErrAuthFailed) {
		t.Errorf("Complete() error = %v, want ErrAuthFailed", err)
	}
}
