// Package transformerbee provides the Converter adapter for the
// transformer.bee EDIFACT⇄BO4E transformation service.
package transformerbee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/bo4e"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/edifact"
	"github.com/hochfrequenz/transformerbee-mcp/internal/port/outbound"
)

const (
	// DefaultHost is the staging deployment used when none is configured.
	DefaultHost = "https://transformerstage.utilibee.io"

	// DefaultTokenURL is the OAuth token endpoint for the authenticated client.
	DefaultTokenURL = "https://hochfrequenz.eu.auth0.com/oauth/token"

	// DefaultAudience is the OAuth audience requested for transformer.bee.
	DefaultAudience = "https://transformer.bee"

	ediToBo4ePath = "/v1/transformer/EdiToBo4E"
	bo4eToEdiPath = "/v1/transformer/Bo4eToEdi"

	defaultTimeout = 30 * time.Second

	// maxResponseBodySize caps response reads from transformer.bee.
	maxResponseBodySize = 50 * 1024 * 1024 // 50MB, interchanges can be large
)

// Client calls the transformer.bee HTTP API. It implements the
// outbound.Converter interface and is safe for concurrent use.
type Client struct {
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithClientCredentials wraps the HTTP client with an OAuth2 client
// credentials token source. Tokens are fetched lazily and refreshed
// transparently; ctx bounds the token requests.
func WithClientCredentials(ctx context.Context, clientID, clientSecret, tokenURL, audience string) Option {
	return func(c *Client) {
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		if audience == "" {
			audience = DefaultAudience
		}
		cc := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			EndpointParams: url.Values{
				"audience": []string{audience},
			},
		}
		timeout := c.httpClient.Timeout
		c.httpClient = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a transformer.bee client for the given host. Without
// WithClientCredentials the client sends unauthenticated requests, which the
// staging deployment accepts.
func NewClient(host string, logger *slog.Logger, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ediToBo4eRequest is the EdiToBo4E request body.
type ediToBo4eRequest struct {
	EDI           string `json:"EDI"`
	FormatVersion string `json:"FormatVersion"`
}

// ediToBo4eResponse carries the converted interchange as an escaped JSON
// string rather than embedded JSON.
type ediToBo4eResponse struct {
	BO4E string `json:"BO4E"`
}

// bo4eToEdiRequest is the Bo4eToEdi request body.
type bo4eToEdiRequest struct {
	BO4E          string `json:"BO4E"`
	FormatVersion string `json:"FormatVersion"`
}

// bo4eToEdiResponse is the Bo4eToEdi response body.
type bo4eToEdiResponse struct {
	EDI string `json:"EDI"`
}

// ConvertToBO4E converts a raw EDIFACT message to BO4E Marktnachrichten.
func (c *Client) ConvertToBO4E(ctx context.Context, edi string, formatVersion edifact.FormatVersion) ([]bo4e.Marktnachricht, error) {
	c.logger.Info("converting EDIFACT to BO4E", "host", c.host, "format_version", formatVersion)

	respBody, err := c.post(ctx, ediToBo4ePath, ediToBo4eRequest{
		EDI:           edi,
		FormatVersion: string(formatVersion),
	})
	if err != nil {
		return nil, err
	}

	var resp ediToBo4eResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode EdiToBo4E response: %w", err)
	}

	// The BO4E payload arrives with literal backslash-n sequences where the
	// source EDIFACT had line breaks.
	payload := strings.ReplaceAll(resp.BO4E, `\n`, "\n")

	var marktnachrichten []bo4e.Marktnachricht
	if err := json.Unmarshal([]byte(payload), &marktnachrichten); err != nil {
		return nil, fmt.Errorf("decode BO4E payload: %w", err)
	}

	c.logger.Debug("converted to BO4E", "marktnachrichten", len(marktnachrichten))
	return marktnachrichten, nil
}

// ConvertToEDIFACT converts a single BO4E transaction back to EDIFACT.
func (c *Client) ConvertToEDIFACT(ctx context.Context, transaktion bo4e.BOneyComb, formatVersion edifact.FormatVersion) (string, error) {
	c.logger.Info("converting BO4E to EDIFACT", "host", c.host, "format_version", formatVersion)

	transaktionJSON, err := json.Marshal(transaktion)
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}

	respBody, err := c.post(ctx, bo4eToEdiPath, bo4eToEdiRequest{
		BO4E:          string(transaktionJSON),
		FormatVersion: string(formatVersion),
	})
	if err != nil {
		return "", err
	}

	var resp bo4eToEdiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decode Bo4eToEdi response: %w", err)
	}

	return resp.EDI, nil
}

// post sends a JSON body to the given path and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transformer.bee request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read transformer.bee response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transformer.bee returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Shutdown releases idle connections held by the client.
func (c *Client) Shutdown() {
	c.httpClient.CloseIdleConnections()
}

// Compile-time interface verification.
var _ outbound.Converter = (*Client)(nil)
