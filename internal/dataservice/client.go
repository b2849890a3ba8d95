// Package dataservice is the HTTP client for the external graph data
// service. The relay treats it as a black box: results are opaque JSON
// that gets re-serialized for tool output or proxied to the caller.
package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "http://localhost:8000"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to the graph data service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a data-service client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryRequest is the body of a raw graph query.
type QueryRequest struct {
	Query string `json:"query"`
}

// GetEdges fetches every edge in the graph.
func (c *Client) GetEdges(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/edges")
}

// GetSchema fetches the vertex and edge schema of the graph.
func (c *Client) GetSchema(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/schema")
}

// GetVertices fetches every vertex in the graph.
func (c *Client) GetVertices(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/vertices")
}

// RunQuery executes a raw Gremlin query against the graph.
func (c *Client) RunQuery(ctx context.Context, query string) (json.RawMessage, error) {
	return c.post(ctx, "/query", QueryRequest{Query: query})
}

// LoadData triggers a data load on the data service.
func (c *Client) LoadData(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, "/load", nil)
}

// ClearGraph removes all data from the graph.
func (c *Client) ClearGraph(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, "/clear", nil)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, path)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data service request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read data service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data service %s returned status %d: %s", path, resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}
