// Package service contains the request orchestration between the inbound
// surfaces and the upstream collaborators.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/bo4e"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/edifact"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/ratelimit"
	"github.com/hochfrequenz/transformerbee-mcp/internal/port/outbound"
)

// ErrNoMessages is returned when a conversion yields an empty interchange.
var ErrNoMessages = errors.New("conversion returned no Marktnachrichten")

// MultipleMessagesError signals that a conversion yielded more than one
// Marktnachricht. A deliberate scope limit: the caller must split the
// interchange, the service never silently picks one.
type MultipleMessagesError struct {
	Count int
}

func (e *MultipleMessagesError) Error() string {
	return fmt.Sprintf("more than 1 Marktnachricht (got %d) is not supported yet", e.Count)
}

// MultipleTransactionsError signals that a Marktnachricht contained more than
// one transaction. Same scope limit as MultipleMessagesError.
type MultipleTransactionsError struct {
	Count int
}

func (e *MultipleTransactionsError) Error() string {
	return fmt.Sprintf("more than 1 transaction (got %d) is not supported yet", e.Count)
}

// ProgressFunc receives human-readable progress notes during multi-step
// operations. Inbound adapters forward these to their clients; a nil
// ProgressFunc disables progress reporting.
type ProgressFunc func(ctx context.Context, message string)

// SummarizeService orchestrates EDIFACT⇄BO4E conversion and summarization.
type SummarizeService struct {
	limiter    ratelimit.Limiter
	converter  outbound.Converter
	summarizer outbound.Summarizer
	logger     *slog.Logger
	now        func() time.Time
}

// Option is a functional option for configuring SummarizeService.
type Option func(*SummarizeService)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *SummarizeService) {
		s.now = now
	}
}

// NewSummarizeService creates the orchestrator. limiter may be nil for
// surfaces that do not rate-limit (the stdio tool server talks to a single
// local client and needs none).
func NewSummarizeService(limiter ratelimit.Limiter, converter outbound.Converter, summarizer outbound.Summarizer, logger *slog.Logger, opts ...Option) *SummarizeService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SummarizeService{
		limiter:    limiter,
		converter:  converter,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveFormatVersion returns formatVersion unchanged, or the currently
// valid version when empty.
func (s *SummarizeService) ResolveFormatVersion(formatVersion edifact.FormatVersion) edifact.FormatVersion {
	if formatVersion == "" {
		return edifact.CurrentFormatVersion(s.now())
	}
	return formatVersion
}

// SummarizeEdifact converts an EDIFACT message to BO4E and generates a German
// summary. The identity is charged against the rate limit before any upstream
// call is made. formatVersion defaults to the currently valid one.
func (s *SummarizeService) SummarizeEdifact(ctx context.Context, edi string, identity string, formatVersion edifact.FormatVersion, notify ProgressFunc) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Admit(ctx, identity, s.now()); err != nil {
			return "", err
		}
	}

	formatVersion = s.ResolveFormatVersion(formatVersion)

	marktnachrichten, err := s.converter.ConvertToBO4E(ctx, edi, formatVersion)
	if err != nil {
		s.logger.Error("EDIFACT to BO4E conversion failed", "error", err)
		return "", err
	}
	if err := checkMultiplicity(marktnachrichten); err != nil {
		return "", err
	}
	s.progress(ctx, notify, fmt.Sprintf("Converted %d Marktnachricht(en) to BO4E", len(marktnachrichten)))

	payload, err := json.Marshal(marktnachrichten)
	if err != nil {
		return "", fmt.Errorf("serialize Marktnachrichten: %w", err)
	}

	summary, err := s.summarizer.Summarize(ctx, string(payload))
	if err != nil {
		s.logger.Error("summarization failed", "error", err)
		s.progress(ctx, notify, fmt.Sprintf("Error generating summary: %v", err))
		return "", err
	}
	s.progress(ctx, notify, "Successfully generated summary")

	return summary, nil
}

// ConvertToBO4E converts an EDIFACT message and returns the single resulting
// Marktnachricht. formatVersion defaults to the currently valid one.
func (s *SummarizeService) ConvertToBO4E(ctx context.Context, edi string, formatVersion edifact.FormatVersion) (*bo4e.Marktnachricht, error) {
	formatVersion = s.ResolveFormatVersion(formatVersion)

	marktnachrichten, err := s.converter.ConvertToBO4E(ctx, edi, formatVersion)
	if err != nil {
		s.logger.Error("EDIFACT to BO4E conversion failed", "error", err)
		return nil, err
	}
	if err := checkMultiplicity(marktnachrichten); err != nil {
		return nil, err
	}
	if len(marktnachrichten[0].Transaktionen) == 0 {
		return nil, fmt.Errorf("marktnachricht with UNH %s contains no transactions", marktnachrichten[0].UNH)
	}

	return &marktnachrichten[0], nil
}

// ConvertToEDIFACT converts a single BO4E transaction back to EDIFACT.
// formatVersion defaults to the currently valid one.
func (s *SummarizeService) ConvertToEDIFACT(ctx context.Context, transaktion bo4e.BOneyComb, formatVersion edifact.FormatVersion) (string, error) {
	formatVersion = s.ResolveFormatVersion(formatVersion)

	edi, err := s.converter.ConvertToEDIFACT(ctx, transaktion, formatVersion)
	if err != nil {
		s.logger.Error("BO4E to EDIFACT conversion failed", "error", err)
		return "", err
	}
	return edi, nil
}

// Health reports the summarization backend's health.
func (s *SummarizeService) Health(ctx context.Context) outbound.HealthSnapshot {
	return s.summarizer.CheckHealth(ctx)
}

func (s *SummarizeService) progress(ctx context.Context, notify ProgressFunc, message string) {
	if notify != nil {
		notify(ctx, message)
	}
}

// checkMultiplicity enforces the single-message, single-transaction scope
// limit on conversion results.
func checkMultiplicity(marktnachrichten []bo4e.Marktnachricht) error {
	if len(marktnachrichten) == 0 {
		return ErrNoMessages
	}
	if len(marktnachrichten) > 1 {
		return &MultipleMessagesError{Count: len(marktnachrichten)}
	}
	if len(marktnachrichten[0].Transaktionen) > 1 {
		return &MultipleTransactionsError{Count: len(marktnachrichten[0].Transaktionen)}
	}
	return nil
}
