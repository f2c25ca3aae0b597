package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrInvalidParams = errors.New("invalid completion parameters")
)

// Client - провайдер однократного (без истории) completion
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Request struct {
	Model       string // пусто = модель клиента по умолчанию
	System      string // опционально
	Prompt      string
	MaxTokens   int
	Temperature float64
}
