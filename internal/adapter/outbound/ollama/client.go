// Package ollama provides the Summarizer adapter backed by a local Ollama
// inference server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/port/outbound"
)

const (
	// DefaultHost is the Ollama endpoint used when none is configured.
	DefaultHost = "http://localhost:11434"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3"

	// defaultGenerateTimeout bounds a single inference call. LLM generation
	// is slow; two minutes covers multi-transaction messages on CPU-only hosts.
	defaultGenerateTimeout = 120 * time.Second

	// defaultHealthTimeout bounds the models-listing probe.
	defaultHealthTimeout = 5 * time.Second

	// maxResponseBodySize caps response reads from the inference server.
	// Prevents OOM from an unbounded response body.
	maxResponseBodySize = 10 * 1024 * 1024 // 10MB
)

// systemPrompt instructs the model to summarize BO4E market messages in plain
// German for clerks without technical background.
const systemPrompt = `Du bist ein Experte für BO4E (Business Objects for Energy) im deutschen Energiemarkt.
Fasse die folgende BO4E-Nachricht in einfachem Deutsch zusammen.
Erkläre den Nachrichtentyp, die beteiligten Parteien, und die wesentlichen Inhalte.
Antworte präzise und verständlich für Sachbearbeiter ohne technische Kenntnisse.`

// Client talks to an Ollama server. It implements the outbound.Summarizer
// interface and is safe for concurrent use.
type Client struct {
	host  string
	model string

	// Separate clients because the two operations have very different
	// latency envelopes: inference may take minutes, the health probe
	// must answer within seconds.
	generateClient *http.Client
	healthClient   *http.Client

	logger *slog.Logger
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithHost sets the Ollama base URL.
func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = strings.TrimRight(host, "/")
		}
	}
}

// WithModel sets the model name used for generation and health checks.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGenerateTimeout overrides the inference timeout.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.generateClient.Timeout = d
	}
}

// WithHealthTimeout overrides the health-probe timeout.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.healthClient.Timeout = d
	}
}

// NewClient creates an Ollama client with the given options.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		host:           DefaultHost,
		model:          DefaultModel,
		generateClient: &http.Client{Timeout: defaultGenerateTimeout},
		healthClient:   &http.Client{Timeout: defaultHealthTimeout},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the subset of the /api/generate response we consume.
type generateResponse struct {
	Response string `json:"response"`
}

// tagsResponse is the subset of the /api/tags response we consume.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Summarize posts the BO4E payload to /api/generate and returns the model's
// answer. The payload goes in as the prompt; the fixed German system prompt
// frames the task.
func (c *Client) Summarize(ctx context.Context, bo4eJSON string) (string, error) {
	c.logger.Info("summarizing BO4E message", "model", c.model, "host", c.host)

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: bo4eJSON,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.generateClient.Do(req)
	if err != nil {
		return "", c.classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &outbound.SummarizerStatusError{Code: resp.StatusCode}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", c.classifyTransportError(err)
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	c.logger.Debug("generated summary", "length", len(result.Response))
	return result.Response, nil
}

// classifyTransportError maps a transport failure to one of the typed port
// errors so callers can distinguish "down" from "slow".
func (c *Client) classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", outbound.ErrSummarizerTimeout, err)
	}
	return fmt.Errorf("%w at %s: %v", outbound.ErrSummarizerUnreachable, c.host, err)
}

// CheckHealth probes /api/tags and reports whether the server is reachable
// and the configured model is available. Never returns an error: every
// failure mode lands in the snapshot's Error field.
func (c *Client) CheckHealth(ctx context.Context) outbound.HealthSnapshot {
	snapshot := outbound.HealthSnapshot{
		Host:  c.host,
		Model: c.model,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		snapshot.Error = fmt.Sprintf("Unexpected error: %v", err)
		return snapshot
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		snapshot.Error = fmt.Sprintf("Cannot connect to Ollama at %s: %v", c.host, err)
		return snapshot
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The server answered, just not happily.
		snapshot.Reachable = true
		snapshot.Error = fmt.Sprintf("Ollama returned error: %d", resp.StatusCode)
		return snapshot
	}
	snapshot.Reachable = true

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		snapshot.Error = fmt.Sprintf("Unexpected error: %v", err)
		return snapshot
	}

	var tags tagsResponse
	if err := json.Unmarshal(respBody, &tags); err != nil {
		snapshot.Error = fmt.Sprintf("Unexpected error: %v", err)
		return snapshot
	}

	// A configured model matches either the full listed name ("llama3:latest")
	// or the name with its tag stripped ("llama3").
	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		available = append(available, m.Name)
		base, _, _ := strings.Cut(m.Name, ":")
		if c.model == m.Name || c.model == base {
			snapshot.ModelAvailable = true
		}
	}
	if !snapshot.ModelAvailable {
		snapshot.Error = fmt.Sprintf("Model '%s' not found. Available: %v", c.model, available)
	}

	return snapshot
}

// Compile-time interface verification.
var _ outbound.Summarizer = (*Client)(nil)
