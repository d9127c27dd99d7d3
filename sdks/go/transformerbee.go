// Package transformerbee provides a Go SDK for the TransformerBee.mcp REST API.
//
// TransformerBee.mcp summarizes German energy market EDIFACT messages in plain
// German. This SDK wraps the /summarize and /health endpoints using only the
// Go standard library (net/http) with zero external dependencies.
//
// Quick start:
//
//	// Set TRANSFORMERBEE_MCP_SERVER_ADDR and TRANSFORMERBEE_MCP_TOKEN env vars, then:
//	client := transformerbee.NewClient()
//
//	summary, err := client.Summarize(ctx, "UNB+UNOC:3+9900123456789+...")
//	if err != nil {
//	    var rateLimited *transformerbee.RateLimitedError
//	    if errors.As(err, &rateLimited) {
//	        fmt.Printf("Throttled: %s\n", rateLimited.Detail)
//	    }
//	}
package transformerbee

// HealthStatus is the overall verdict reported by the health endpoint.
type HealthStatus string

const (
	// StatusHealthy indicates the inference backend is reachable and the
	// configured model is available.
	StatusHealthy HealthStatus = "healthy"

	// StatusUnhealthy indicates the backend is down or the model is missing.
	StatusUnhealthy HealthStatus = "unhealthy"
)

// SummarizeRequest represents a summarization request sent to the server.
type SummarizeRequest struct {
	// Edifact is the raw EDIFACT message to summarize.
	Edifact string `json:"edifact"`
}

// SummarizeResponse represents the result of a summarization.
type SummarizeResponse struct {
	// Summary is the generated German summary.
	Summary string `json:"summary"`
}

// HealthResponse represents the server's health report.
type HealthResponse struct {
	// Status is "healthy" or "unhealthy".
	Status HealthStatus `json:"status"`

	// OllamaHost is the inference backend the server talks to.
	OllamaHost string `json:"ollama_host"`

	// OllamaReachable reports whether the backend answered the probe.
	OllamaReachable bool `json:"ollama_reachable"`

	// Model is the configured model name.
	Model string `json:"model"`

	// ModelAvailable reports whether the configured model is installed.
	ModelAvailable bool `json:"model_available"`

	// Error carries the failure detail when unhealthy.
	Error string `json:"error,omitempty"`
}
