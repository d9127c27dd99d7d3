package transformerbee

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the TransformerBee.mcp server address.
// If not set, defaults to the TRANSFORMERBEE_MCP_SERVER_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) {
		c.serverAddr = addr
	}
}

// WithToken sets the bearer token for authenticating with the server.
// If not set, defaults to the TRANSFORMERBEE_MCP_TOKEN environment variable.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 150 seconds: summarization waits on LLM inference,
// which may take minutes on CPU-only hosts.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}
