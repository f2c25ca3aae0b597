package search

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized   = errors.New("invalid API key")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
	ErrSearchFailed   = errors.New("search request failed")
	ErrEmptyQuery     = errors.New("empty search query")
	ErrInvalidCount   = errors.New("invalid result count")
)

// SearchClient - провайдер поиска. Пустой список результатов не ошибка.
type SearchClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

type SearchRequest struct {
	Query      string
	MaxResults int
}

type SearchResponse struct {
	Query   string
	Results []SearchResult
}

type SearchResult struct {
	Title         string
	URL           string
	Content       string // текст страницы, может быть пустым
	Score         float64
	PublishedDate string
}
