package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/search"
)

const (
	DefaultBaseURL = "https://api.exa.ai"
	// сколько символов текста страницы просить у Exa, обрезка до excerpt делается выше
	DefaultMaxCharacters = 800
)

type Config struct {
	APIKey        string
	BaseURL       string
	SearchType    string // auto | neural | keyword
	MaxCharacters int
	Timeout       time.Duration
}

type Client struct {
	apiKey        string
	baseURL       string
	searchType    string
	maxCharacters int
	client        *http.Client
	logger        *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SearchType == "" {
		cfg.SearchType = "auto"
	}
	if cfg.MaxCharacters <= 0 {
		cfg.MaxCharacters = DefaultMaxCharacters
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		searchType:    cfg.SearchType,
		maxCharacters: cfg.MaxCharacters,
		client:        &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}
}

type exaRequest struct {
	Query      string      `json:"query"`
	Type       string      `json:"type,omitempty"`
	NumResults int         `json:"numResults,omitempty"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Text exaTextOptions `json:"text"`
}

type exaTextOptions struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

type exaResponse struct {
	RequestID string      `json:"requestId"`
	Results   []exaResult `json:"results"`
}

type exaResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Text          string   `json:"text"`
	Score         *float64 `json:"score"`
	PublishedDate string   `json:"publishedDate"`
}

type exaError struct {
	Error string `json:"error"`
}

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	body, err := json.Marshal(exaRequest{
		Query:      req.Query,
		Type:       c.searchType,
		NumResults: req.MaxResults,
		Contents:   exaContents{Text: exaTextOptions{MaxCharacters: c.maxCharacters}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	respBody, statusCode, err := search.Do(c.client, httpReq)
	if err != nil {
		return nil, err
	}
	if statusCode != http.StatusOK {
		var e exaError
		_ = json.Unmarshal(respBody, &e)
		c.logger.Warn("exa request failed",
			zap.Int("status", statusCode),
			zap.String("error", e.Error),
		)
		return nil, search.StatusError(statusCode)
	}

	var er exaResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]search.SearchResult, len(er.Results))
	for i, r := range er.Results {
		results[i] = search.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Text,
			PublishedDate: r.PublishedDate,
		}
		if r.Score != nil {
			results[i].Score = *r.Score
		}
	}

	c.logger.Debug("exa search done",
		zap.String("request_id", er.RequestID),
		zap.Int("results", len(results)),
	)
	return &search.SearchResponse{Query: req.Query, Results: results}, nil
}

var _ search.SearchClient = (*Client)(nil)
