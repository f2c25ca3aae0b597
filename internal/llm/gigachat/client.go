package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/llm"
)

type Config struct {
	AuthKey      string // готовый ключ авторизации (предпочтительно)
	ClientID     string // альтернатива: будет base64(id:secret)
	ClientSecret string
	Scope        string
	Model        string
	AuthURL      string
	BaseURL      string
	Timeout      time.Duration
	InsecureTLS  bool // у Сбера сертификат не из стандартных CA
}

type Client struct {
	model   string
	baseURL string
	client  *http.Client
	tokens  *tokenSource
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	}
	if cfg.Scope == "" {
		cfg.Scope = "GIGACHAT_API_PERS"
	}
	if cfg.Model == "" {
		cfg.Model = "GigaChat"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureTLS {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	authKey := cfg.AuthKey
	if authKey == "" && cfg.ClientID != "" && cfg.ClientSecret != "" {
		authKey = base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	}

	return &Client{
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  httpClient,
		logger:  logger,
		tokens: &tokenSource{
			authKey: authKey,
			scope:   cfg.Scope,
			authURL: cfg.AuthURL,
			client:  httpClient,
			logger:  logger,
		},
	}
}

// Complete делает не больше двух попыток: вторая только если на первой
// протух токен (401). Это обновление авторизации, а не retry запроса.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	body, err := json.Marshal(llm.NewChatRequest(c.model, req))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return "", err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+token)

		respBody, statusCode, err := llm.DoRequest(c.client, httpReq)
		if err != nil {
			return "", err
		}

		if statusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
			continue
		}
		if statusCode != http.StatusOK {
			return "", llm.HandleHTTPError(statusCode, respBody, c.logger, "gigachat")
		}

		chatResp, err := llm.ParseChatResponse(respBody)
		if err != nil {
			return "", err
		}
		return llm.ExtractContent(chatResp)
	}

	return "", llm.ErrAuthFailed
}

var _ llm.Client = (*Client)(nil)
