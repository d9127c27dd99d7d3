package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/inbound/mcptool"
	"github.com/hochfrequenz/transformerbee-mcp/internal/config"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP tool server on stdio",
	Long: `Start the MCP server on stdin/stdout, exposing the tools
convert_edifact_to_bo4e, convert_bo4e_to_edifact and
summarize_edifact_message.

Intended to be spawned by an MCP client (an AI assistant or IDE). All logs go
to stderr; stdout carries the MCP stream.

Example client configuration:
  {
    "mcpServers": {
      "transformerbee": {
        "command": "transformerbee-mcp",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Server.LogLevel)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	converter := newConverter(ctx, cfg, logger)
	defer converter.Shutdown()
	summarizer := newSummarizer(cfg, logger)

	// No rate limiting on stdio: the transport serves a single local client.
	svc := service.NewSummarizeService(nil, converter, summarizer, logger)
	server := mcptool.NewServer(svc, Version, logger)

	err = server.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("transformerbee-mcp stopped")
	return nil
}
