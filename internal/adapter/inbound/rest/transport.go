package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/auth"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

// Transport is the inbound HTTP adapter serving the REST API.
type Transport struct {
	service  *service.SummarizeService
	verifier auth.TokenVerifier
	server   *http.Server

	addr              string
	allowedOrigins    []string
	trackedIdentities func() float64
	logger            *slog.Logger
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address. Default is "0.0.0.0:8080".
func WithAddr(addr string) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// WithAllowedOrigins sets the CORS allowlist.
func WithAllowedOrigins(origins []string) Option {
	return func(t *Transport) {
		t.allowedOrigins = origins
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithTrackedIdentitiesGauge exports the given count as the
// rate_limit_identities gauge.
func WithTrackedIdentitiesGauge(count func() float64) Option {
	return func(t *Transport) {
		t.trackedIdentities = count
	}
}

// NewTransport creates the REST transport wrapping the given service.
func NewTransport(svc *service.SummarizeService, verifier auth.TokenVerifier, opts ...Option) *Transport {
	t := &Transport{
		service:        svc,
		verifier:       verifier,
		addr:           "0.0.0.0:8080",
		allowedOrigins: []string{},
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start begins serving and blocks until the context is cancelled or the
// server fails.
func (t *Transport) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(reg, t.trackedIdentities)

	handler := NewHandler(t.service, t.verifier, metrics, t.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/summarize", handler.Summarize)
	mux.HandleFunc("/health", handler.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	}))

	// Middleware chain, outermost first: metrics capture the full duration,
	// request IDs must exist before anything logs, CORS answers preflights
	// before auth, recovery guards the handler itself.
	var chained http.Handler = mux
	chained = RecoveryMiddleware(t.logger)(chained)
	chained = CORSMiddleware(t.allowedOrigins)(chained)
	chained = RequestIDMiddleware(t.logger)(chained)
	chained = MetricsMiddleware(metrics)(chained)

	t.server = &http.Server{
		Addr:              t.addr,
		Handler:           chained,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		t.logger.Info("starting REST API server", "addr", t.addr)
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down REST API server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}

	t.logger.Info("REST API server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
