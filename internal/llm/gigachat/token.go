package gigachat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/llm"
)

// токен обновляем заранее, за 5 минут до истечения
const tokenRefreshMargin = 5 * time.Minute

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix ms
}

// tokenSource кеширует OAuth-токен между вызовами
type tokenSource struct {
	authKey string
	scope   string
	authURL string
	client  *http.Client
	logger  *zap.Logger

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.validLocked() {
		t := s.token
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx)
}

func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) validLocked() bool {
	return s.token != "" && time.Now().Before(s.expiry.Add(-tokenRefreshMargin))
}

func (s *tokenSource) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// пока ждали лок, токен мог обновить соседний вызов
	if s.validLocked() {
		return s.token, nil
	}

	form := url.Values{}
	form.Set("scope", s.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+s.authKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString()) // обязательный уникальный id запроса

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Error("gigachat auth failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", llm.ErrAuthFailed
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if ar.AccessToken == "" {
		return "", llm.ErrAuthFailed
	}

	s.token = ar.AccessToken
	s.expiry = time.UnixMilli(ar.ExpiresAt)

	s.logger.Debug("gigachat token refreshed", zap.Time("expires", s.expiry))
	return s.token, nil
}
