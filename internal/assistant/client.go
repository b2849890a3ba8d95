// Package assistant is the HTTP client for the upstream assistant-run
// provider. The relay depends on four operations: create a thread, append
// a message, start a run as an event stream, and submit tool outputs as a
// replacement event stream.
package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider is the surface the relay consumes. *Client implements it; tests
// substitute fakes.
type Provider interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, role, content string) error
	StreamRun(ctx context.Context, threadID, agentID string) (<-chan EventResult, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan EventResult, error)
}

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

// Client is the HTTP implementation of Provider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an assistant provider client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Provider = (*Client)(nil)

// CreateThread creates an empty conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, "/threads", map[string]any{})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var thread struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&thread); err != nil {
		return "", fmt.Errorf("failed to decode thread: %w", err)
	}
	if thread.ID == "" {
		return "", fmt.Errorf("provider returned thread without id")
	}
	return thread.ID, nil
}

// AddMessage appends a message to a thread.
func (c *Client) AddMessage(ctx context.Context, threadID, role, content string) error {
	resp, err := c.post(ctx, "/threads/"+threadID+"/messages", map[string]any{
		"role":    role,
		"content": content,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// StreamRun starts a run of the given agent profile against a thread and
// returns its lifecycle event stream.
func (c *Client) StreamRun(ctx context.Context, threadID, agentID string) (<-chan EventResult, error) {
	resp, err := c.post(ctx, "/threads/"+threadID+"/runs", map[string]any{
		"assistant_id": agentID,
		"stream":       true,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan EventResult)
	go c.streamReader(resp.Body, out)
	return out, nil
}

// SubmitToolOutputs sends the outputs of a tool-call batch back to the
// provider and returns the replacement event stream for the run.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (<-chan EventResult, error) {
	resp, err := c.post(ctx, "/threads/"+threadID+"/runs/"+runID+"/submit_tool_outputs", map[string]any{
		"tool_outputs": outputs,
		"stream":       true,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan EventResult)
	go c.streamReader(resp.Body, out)
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request %s failed: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider %s returned status %d: %s", path, resp.StatusCode, string(respBody))
	}

	return resp, nil
}

// streamReader parses the SSE body into lifecycle events. Frames use
// event:/data: framing terminated by a blank line; the [DONE] sentinel
// closes the stream without an event.
func (c *Client) streamReader(body io.ReadCloser, out chan<- EventResult) {
	defer close(out)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var currentEvent string
	var currentData strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line indicates end of event
		if line == "" {
			if currentEvent != "" && currentData.Len() > 0 {
				data := currentData.String()
				if data != "[DONE]" {
					out <- EventResult{
						Event: &Event{
							Type: EventType(currentEvent),
							Data: json.RawMessage(data),
						},
					}
				}
			}
			currentEvent = ""
			currentData.Reset()
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
			continue
		}

		if strings.HasPrefix(line, "data: ") {
			// Multiple data lines in one frame join with a newline.
			if currentData.Len() > 0 {
				currentData.WriteByte('\n')
			}
			currentData.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}

	if err := scanner.Err(); err != nil {
		out <- EventResult{Err: fmt.Errorf("stream read error: %w", err)}
	}
}
