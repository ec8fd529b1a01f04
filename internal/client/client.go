package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokenhub/internal/model"

	"github.com/go-resty/resty/v2"
)

// Envelope is the response wrapper every endpoint uses. A false Success
// always carries a human-readable Message.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// GroupInfo describes one selectable access group as served by the backend.
type GroupInfo struct {
	Desc  string  `json:"desc"`
	Ratio float64 `json:"ratio"`
}

// API is the slice of the backend the form controller needs. Implemented by
// Client; fakeable in tests.
type API interface {
	GetToken(ctx context.Context, id int) (*model.Token, error)
	CreateToken(ctx context.Context, payload *model.Token) error
	UpdateToken(ctx context.Context, payload *model.Token) error
	ListModels(ctx context.Context) ([]string, error)
	ListGroups(ctx context.Context) (map[string]GroupInfo, error)
}

// Client talks to the token service's JSON API.
type Client struct {
	http *resty.Client
}

// New builds a Client for the service at baseURL, authenticating with the
// given bearer credential.
func New(baseURL, bearer string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	if bearer != "" {
		c.SetAuthToken(bearer)
	}
	return &Client{http: c}
}

// call issues one request and decodes the envelope. A transport failure, a
// non-2xx status and a success=false envelope are all errors; the latter
// carries the backend's message verbatim.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var env Envelope
	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&env)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status())
	}
	if !env.Success {
		return fmt.Errorf("%s", env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) GetToken(ctx context.Context, id int) (*model.Token, error) {
	var token model.Token
	if err := c.call(ctx, resty.MethodGet, fmt.Sprintf("/api/token/%d", id), nil, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *Client) CreateToken(ctx context.Context, payload *model.Token) error {
	return c.call(ctx, resty.MethodPost, "/api/token/", payload, nil)
}

func (c *Client) UpdateToken(ctx context.Context, payload *model.Token) error {
	return c.call(ctx, resty.MethodPut, "/api/token/", payload, nil)
}

func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var models []string
	if err := c.call(ctx, resty.MethodGet, "/api/user/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) ListGroups(ctx context.Context) (map[string]GroupInfo, error) {
	groups := map[string]GroupInfo{}
	if err := c.call(ctx, resty.MethodGet, "/api/user/self/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
