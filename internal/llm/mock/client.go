package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/research-assistant/internal/llm"
)

// Client отвечает по сценарию: Responses по очереди, потом Response.
// Ошибки можно задать на конкретный номер вызова (с 1).
type Client struct {
	Response  string
	Responses []string
	Error     error
	ErrorAt   map[int]error
	Delay     time.Duration

	CallCount  int
	LastPrompt string
	AllCalls   []llm.Request

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		Response: "SUMMARY: mock report.",
		ErrorAt:  make(map[int]error),
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

// WithResponses - ответы для первых вызовов по порядку
func (c *Client) WithResponses(responses ...string) *Client {
	c.Responses = responses
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithErrorAt(call int, err error) *Client {
	c.ErrorAt[call] = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	c.CallCount++
	n := c.CallCount
	c.LastPrompt = req.Prompt
	c.AllCalls = append(c.AllCalls, req)
	delay := c.Delay
	err := c.Error
	if e, ok := c.ErrorAt[n]; ok {
		err = e
	}
	resp := c.Response
	if n <= len(c.Responses) {
		resp = c.Responses[n-1]
	}
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return "", err
	}
	return resp, nil
}

func (c *Client) Calls() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Request, len(c.AllCalls))
	copy(out, c.AllCalls)
	return out
}

var _ llm.Client = (*Client)(nil)
