package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// Config holds the upstream ShopDirect API connection settings.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"`
}

// Client is the typed HTTP client for the upstream REST API. A bearer
// token, once obtained through Login or configured up front, is attached
// to every request. 401s are surfaced as-is; there is no refresh flow.
type Client struct {
	cli *resty.Client

	mu    sync.RWMutex
	token string
}

// New builds a client for the given upstream.
func New(c Config) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cli := resty.New()
	cli.SetBaseURL(c.BaseURL)
	cli.SetTimeout(timeout)
	cli.SetHeader("Accept", "application/json")

	client := &Client{cli: cli, token: c.Token}
	cli.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if t := client.Token(); t != "" {
			r.SetHeader("Authorization", "Bearer "+t)
		}
		return nil
	})
	return client
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// envelope is the upstream response wrapper: {status, results, total,
// token, message, data}. Data's inner shape varies per endpoint.
type envelope struct {
	Status  string          `json:"status,omitempty"`
	Total   int             `json:"total,omitempty"`
	Results int             `json:"results,omitempty"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, fallback string) (*envelope, error) {
	req := c.cli.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	return decodeResponse(resp, err, fallback)
}

func decodeResponse(resp *resty.Response, err error, fallback string) (*envelope, error) {
	if err != nil {
		return nil, networkError(fallback, err)
	}
	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), resp.Body(), fallback)
	}

	env := &envelope{}
	if len(resp.Body()) > 0 {
		if uErr := json.Unmarshal(resp.Body(), env); uErr != nil {
			return nil, fmt.Errorf("shopapi: could not decode response: %w", uErr)
		}
	}
	return env, nil
}

// decodeList unwraps a collection from the data payload. The upstream
// is inconsistent: data is either {<key>: [...]}, a bare array, or the
// array sits at the response root, so all three shapes are accepted.
func decodeList[T any](data json.RawMessage, key string) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err == nil {
		if inner, ok := keyed[key]; ok {
			var items []T
			if err := json.Unmarshal(inner, &items); err != nil {
				return nil, fmt.Errorf("shopapi: could not decode %s: %w", key, err)
			}
			return items, nil
		}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("shopapi: could not decode %s: %w", key, err)
	}
	return items, nil
}

// decodeObject unwraps a single entity from {<key>: {...}} or a bare
// object.
func decodeObject[T any](data json.RawMessage, key string) (*T, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("shopapi: empty %s payload", key)
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err == nil {
		if inner, ok := keyed[key]; ok {
			out := new(T)
			if err := json.Unmarshal(inner, out); err != nil {
				return nil, fmt.Errorf("shopapi: could not decode %s: %w", key, err)
			}
			return out, nil
		}
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("shopapi: could not decode %s: %w", key, err)
	}
	return out, nil
}
