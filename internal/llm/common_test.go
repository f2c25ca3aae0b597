package llm

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewChatRequest(t *testing.T) {
	t.Run("without system", func(t *testing.T) {
		req := NewChatRequest("default-model", Request{Prompt: "hi", MaxTokens: 50, Temperature: 0})

		if req.Model != "default-model" {
			t.Errorf("Model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Messages = %+v, want single user message", req.Messages)
		}
		if req.MaxTokens != 50 {
			t.Errorf("MaxTokens = %d", req.MaxTokens)
		}
		// 0 - валидная температура, должна попасть в запрос
		if req.Temperature == nil || *req.Temperature != 0 {
			t.Errorf("Temperature = %v, want explicit 0", req.Temperature)
		}
	})

	t.Run("with system and model override", func(t *testing.T) {
		req := NewChatRequest("default-model", Request{Model: "small", System: "sys", Prompt: "hi"})

		if req.Model != "small" {
			t.Errorf("Model = %q, want small", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hi" {
			t.Errorf("Messages = %+v", req.Messages)
		}
	})
}

func TestHandleHTTPError(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusForbidden, ErrAuthFailed},
		{http.StatusTooManyRequests, ErrRateLimit},
		{http.StatusInternalServerError, ErrRequestFailed},
		{http.StatusBadRequest, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := HandleHTTPError(tt.status, []byte(strings.Repeat("x", 2000)), zap.NewNop(), "test")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("HandleHTTPError(%d) = %v, want %v", tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestExtractContent(t *testing.T) {
	if _, err := ExtractContent(&ChatResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("empty choices error = %v, want ErrEmptyResponse", err)
	}

	got, err := ExtractContent(&ChatResponse{Choices: []Choice{{Message: Message{Content: "ok"}}}})
	if err != nil || got != "ok" {
		t.Errorf("ExtractContent() = %q, %v", got, err)
	}
}
