// Package cmd provides the CLI commands for transformerbee-mcp.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/transformerbee-mcp/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "transformerbee-mcp",
	Short: "TransformerBee.mcp - EDIFACT tooling for MCP clients and HTTP",
	Long: `TransformerBee.mcp bridges German energy market EDIFACT messages and their
BO4E representation, and summarizes messages in plain German via a local LLM.

It exposes the same pipeline over two surfaces:

  serve     REST API with bearer authentication and rate limiting
  mcp       MCP tool server on stdio for AI assistants

Configuration:
  Config is loaded from transformerbee-mcp.yaml in the current directory,
  $HOME/.transformerbee-mcp/, or /etc/transformerbee-mcp/.

  Environment variables override config values, either with the
  TRANSFORMERBEE_MCP_ prefix (TRANSFORMERBEE_MCP_SERVER_PORT=9090) or via the
  short names OLLAMA_HOST, OLLAMA_MODEL, TRANSFORMERBEE_HOST,
  TRANSFORMERBEE_CLIENT_ID, TRANSFORMERBEE_CLIENT_SECRET, AUTH0_DOMAIN,
  AUTH0_AUDIENCE, ALLOWED_ORIGINS, RATE_LIMIT, RATE_WINDOW_SECONDS, HOST, PORT.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./transformerbee-mcp.yaml)")
}

func initConfig() {
	if err := config.InitViper(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Logs go to stderr: stdout is reserved
// for the MCP stream when running the stdio transport.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// parseLogLevel converts a string log level to slog.Level. Returns
// slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
