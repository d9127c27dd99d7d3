package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/inbound/rest"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/auth0"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/memory"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/ollama"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/transformerbee"
	"github.com/hochfrequenz/transformerbee-mcp/internal/config"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/ratelimit"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the HTTP server exposing POST /summarize, GET /health and
GET /metrics.

/summarize requires a bearer token issued by the configured Auth0 tenant and
is rate limited per caller identity.

Examples:
  # Start with config file settings
  transformerbee-mcp serve

  # Start with a specific config file
  transformerbee-mcp --config /path/to/config.yaml serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Server.LogLevel)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	verifier, err := auth0.NewVerifier(ctx, cfg.Auth.Auth0Domain, cfg.Auth.Auth0Audience, logger)
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	limiter := memory.NewSlidingWindowLimiter(ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window(),
	}, logger)

	converter := newConverter(ctx, cfg, logger)
	defer converter.Shutdown()
	summarizer := newSummarizer(cfg, logger)

	svc := service.NewSummarizeService(limiter, converter, summarizer, logger)

	transport := rest.NewTransport(svc, verifier,
		rest.WithAddr(cfg.Server.Addr()),
		rest.WithAllowedOrigins(cfg.Server.Origins()),
		rest.WithLogger(logger),
		rest.WithTrackedIdentitiesGauge(func() float64 { return float64(limiter.Size()) }),
	)

	logger.Info("transformerbee-mcp starting",
		"version", Version,
		"addr", cfg.Server.Addr(),
		"ollama_host", cfg.Ollama.Host,
		"ollama_model", cfg.Ollama.Model,
		"transformerbee_host", cfg.TransformerBee.Host,
		"rate_limit", cfg.RateLimit.Limit,
		"rate_window", cfg.RateLimit.Window(),
	)

	if err := transport.Start(ctx); err != nil {
		return err
	}
	logger.Info("transformerbee-mcp stopped")
	return nil
}

// newConverter builds the transformer.bee client, authenticating via OAuth
// client credentials when both are configured.
func newConverter(ctx context.Context, cfg *config.Config, logger *slog.Logger) *transformerbee.Client {
	opts := []transformerbee.Option{}
	if cfg.TransformerBee.Authenticated() {
		logger.Info("transformer.bee client uses OAuth client credentials", "host", cfg.TransformerBee.Host)
		opts = append(opts, transformerbee.WithClientCredentials(ctx,
			cfg.TransformerBee.ClientID,
			cfg.TransformerBee.ClientSecret,
			transformerbee.DefaultTokenURL,
			transformerbee.DefaultAudience,
		))
	} else {
		logger.Info("transformer.bee client is unauthenticated", "host", cfg.TransformerBee.Host)
	}
	return transformerbee.NewClient(cfg.TransformerBee.Host, logger, opts...)
}

// newSummarizer builds the Ollama client.
func newSummarizer(cfg *config.Config, logger *slog.Logger) *ollama.Client {
	return ollama.NewClient(logger,
		ollama.WithHost(cfg.Ollama.Host),
		ollama.WithModel(cfg.Ollama.Model),
	)
}
