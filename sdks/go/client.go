package transformerbee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxResponseBodySize caps response reads from the server.
const maxResponseBodySize = 10 * 1024 * 1024 // 10MB

// Client is the TransformerBee.mcp SDK client.
type Client struct {
	serverAddr string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new TransformerBee.mcp SDK client.
// It reads configuration from TRANSFORMERBEE_MCP_* environment variables by
// default. Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr: os.Getenv("TRANSFORMERBEE_MCP_SERVER_ADDR"),
		token:      os.Getenv("TRANSFORMERBEE_MCP_TOKEN"),
		timeout:    150 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// Summarize sends an EDIFACT message to the server and returns the generated
// German summary. On 401 it returns an *UnauthorizedError, on 429 a
// *RateLimitedError, and on connection failures a *ServerUnreachableError.
func (c *Client) Summarize(ctx context.Context, edifact string) (string, error) {
	body, err := json.Marshal(SummarizeRequest{Edifact: edifact})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/summarize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServerUnreachableError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", &ServerUnreachableError{Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", errorFromResponse(resp.StatusCode, respBody)
	}

	var result SummarizeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Summary, nil
}

// Health fetches the server's health report. The report is returned for both
// healthy and unhealthy verdicts; only transport or protocol failures produce
// an error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServerUnreachableError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &ServerUnreachableError{Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp.StatusCode, respBody)
	}

	var result HealthResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Healthy is a convenience method that reports whether the server considers
// itself healthy. It returns false on any failure.
func (c *Client) Healthy(ctx context.Context) bool {
	health, err := c.Health(ctx)
	return err == nil && health.Status == StatusHealthy
}

// baseURL normalizes the configured server address into a base URL.
func (c *Client) baseURL() string {
	addr := strings.TrimRight(c.serverAddr, "/")
	if addr == "" {
		addr = "http://localhost:8080"
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return addr
}

// errorFromResponse maps an error response to the SDK's typed errors. The
// server reports failures as {"detail": "..."}.
func errorFromResponse(statusCode int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return &UnauthorizedError{Detail: detail}
	case http.StatusTooManyRequests:
		return &RateLimitedError{Detail: detail}
	default:
		return &APIError{StatusCode: statusCode, Detail: detail}
	}
}
