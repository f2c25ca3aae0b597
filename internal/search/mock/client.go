package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/research-assistant/internal/search"
)

// Client - провайдер с заранее заданными ответами. Ответ для конкретного
// запроса приоритетнее общего Results.
type Client struct {
	Results      []search.SearchResult
	QueryResults map[string][]search.SearchResult
	Error        error
	QueryErrors  map[string]error
	Delay        time.Duration

	CallCount   int
	LastRequest search.SearchRequest
	AllRequests []search.SearchRequest

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		QueryResults: make(map[string][]search.SearchResult),
		QueryErrors:  make(map[string]error),
	}
}

func (c *Client) WithResults(results []search.SearchResult) *Client {
	c.Results = results
	return c
}

func (c *Client) WithQueryResults(query string, results []search.SearchResult) *Client {
	c.QueryResults[query] = results
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithQueryError(query string, err error) *Client {
	c.QueryErrors[query] = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Search(ctx context.Context, req search.SearchRequest) (*search.SearchResponse, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	err := c.Error
	if qErr, ok := c.QueryErrors[req.Query]; ok {
		err = qErr
	}
	results := c.Results
	if qRes, ok := c.QueryResults[req.Query]; ok {
		results = qRes
	}
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	if req.MaxResults > 0 && len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}

	return &search.SearchResponse{
		Query:   req.Query,
		Results: results,
	}, nil
}

// Queries - список запросов в порядке вызова
func (c *Client) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.AllRequests))
	for i, r := range c.AllRequests {
		out[i] = r.Query
	}
	return out
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}
