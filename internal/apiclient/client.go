package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockdesk/internal/api"
)

// ErrNotFound indicates the requested resource does not exist on the daemon.
var ErrNotFound = errors.New("not found")

// Client provides HTTP access to the daemon API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes the constructed client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// New builds a client for the daemon listening at addr ("host:port" or a
// full URL).
func New(addr string, opts ...Option) *Client {
	base := strings.TrimSpace(addr)
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	client := &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var status api.DaemonStatus
	if err := c.get(ctx, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// QueueList returns queue items optionally filtered by statuses.
func (c *Client) QueueList(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	query := url.Values{}
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			query.Add("status", trimmed)
		}
	}
	var resp api.QueueListResponse
	if err := c.get(ctx, "/api/queue", query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// QueueItem returns a single queue item by id.
func (c *Client) QueueItem(ctx context.Context, id int64) (*api.QueueItem, error) {
	var resp api.QueueItemResponse
	if err := c.get(ctx, fmt.Sprintf("/api/queue/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// Analyze submits a ticker symbol for analysis. targetDir overrides the
// daemon's configured target directory when non-empty.
func (c *Client) Analyze(ctx context.Context, symbol, targetDir string) (*api.AnalyzeResponse, error) {
	body, err := json.Marshal(api.AnalyzeRequest{Symbol: symbol, TargetDir: targetDir})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp api.AnalyzeResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, errors.New("daemon address not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon returned status %d", resp.StatusCode)
}
