package outbound

import (
	"context"
	"errors"
	"fmt"
)

// Typed failure modes of the summarization endpoint. The orchestrator maps
// each to a distinct diagnostic so operators can tell "the LLM is down" from
// "the LLM is slow" from "the LLM rejected the request".
var (
	// ErrSummarizerUnreachable wraps connection failures to the LLM endpoint.
	ErrSummarizerUnreachable = errors.New("summarizer unreachable")

	// ErrSummarizerTimeout wraps deadline expiry while waiting for inference.
	ErrSummarizerTimeout = errors.New("summarizer timed out")
)

// SummarizerStatusError is returned when the LLM endpoint answered with a
// non-success HTTP status.
type SummarizerStatusError struct {
	Code int
}

func (e *SummarizerStatusError) Error() string {
	return fmt.Sprintf("summarizer returned status %d", e.Code)
}

// HealthSnapshot is the result of probing the LLM endpoint. Computed fresh on
// every query, never cached, and never an error: all failure modes are
// captured in the Error field so monitoring always gets a structured answer.
type HealthSnapshot struct {
	Host           string
	Reachable      bool
	Model          string
	ModelAvailable bool
	Error          string
}

// Summarizer is the outbound port for the LLM inference endpoint.
type Summarizer interface {
	// Summarize posts the serialized BO4E payload to the generation endpoint
	// and returns the model's prose answer. Failures are reported as
	// ErrSummarizerUnreachable, ErrSummarizerTimeout or
	// *SummarizerStatusError, never as an undifferentiated error.
	Summarize(ctx context.Context, bo4eJSON string) (string, error)

	// CheckHealth probes the models-listing endpoint.
	CheckHealth(ctx context.Context) HealthSnapshot
}
