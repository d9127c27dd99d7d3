// Package mcptool exposes the conversion and summarization operations as MCP
// tools over a bidirectional session transport.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/bo4e"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/edifact"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

// Server wires the three tools onto an MCP server.
type Server struct {
	service *service.SummarizeService
	mcp     *mcp.Server
	logger  *slog.Logger
}

// convertToBO4EInput is the convert_edifact_to_bo4e tool input.
type convertToBO4EInput struct {
	Edifact              string `json:"edifact" jsonschema:"raw EDIFACT message string"`
	EdifactFormatVersion string `json:"edifact_format_version,omitempty" jsonschema:"EDIFACT format version, e.g. FV2504; defaults to the currently valid one"`
}

// convertToEdifactInput is the convert_bo4e_to_edifact tool input.
type convertToEdifactInput struct {
	Transaktion          bo4e.BOneyComb `json:"transaktion" jsonschema:"BO4E transaction to convert"`
	EdifactFormatVersion string         `json:"edifact_format_version,omitempty" jsonschema:"EDIFACT format version, e.g. FV2504; defaults to the currently valid one"`
}

// summarizeInput is the summarize_edifact_message tool input.
type summarizeInput struct {
	Edifact              string `json:"edifact" jsonschema:"raw EDIFACT message string"`
	EdifactFormatVersion string `json:"edifact_format_version,omitempty" jsonschema:"EDIFACT format version, e.g. FV2504; defaults to the currently valid one"`
}

// NewServer creates the MCP tool server wrapping the given service.
func NewServer(svc *service.SummarizeService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service: svc,
		logger:  logger,
	}

	impl := mcp.NewServer(&mcp.Implementation{
		Name:    "TransformerBee.mcp",
		Version: version,
	}, nil)

	mcp.AddTool(impl, &mcp.Tool{
		Name:        "convert_edifact_to_bo4e",
		Description: "Convert an EDIFACT message to its BO4E equivalent",
	}, s.convertEdifactToBO4E)

	mcp.AddTool(impl, &mcp.Tool{
		Name:        "convert_bo4e_to_edifact",
		Description: "Convert a BO4E transaktion to its EDIFACT equivalent",
	}, s.convertBO4EToEdifact)

	mcp.AddTool(impl, &mcp.Tool{
		Name:        "summarize_edifact_message",
		Description: "Generate a human-readable German summary of an EDIFACT message using a local LLM",
	}, s.summarizeEdifactMessage)

	s.mcp = impl
	return s
}

// Run serves MCP sessions on the given transport until the context is
// cancelled or the transport closes. Use &mcp.StdioTransport{} for the CLI.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("starting MCP tool server")
	return s.mcp.Run(ctx, transport)
}

func (s *Server) convertEdifactToBO4E(ctx context.Context, req *mcp.CallToolRequest, in convertToBO4EInput) (*mcp.CallToolResult, map[string]any, error) {
	formatVersion, err := edifact.Parse(in.EdifactFormatVersion)
	if err != nil {
		return nil, nil, err
	}

	marktnachricht, err := s.service.ConvertToBO4E(ctx, in.Edifact, formatVersion)
	if err != nil {
		s.logger.Error("error while converting EDIFACT to BO4E", "error", err)
		return nil, nil, err
	}
	s.info(ctx, req, fmt.Sprintf("Successfully converted Marktnachricht with UNH %s to BO4E", marktnachricht.UNH))

	// The transaction goes out as a generic object so clients get structured
	// content without being bound to this server's Go types.
	raw, err := json.Marshal(marktnachricht.Transaktionen[0])
	if err != nil {
		return nil, nil, fmt.Errorf("serialize transaction: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return nil, out, nil
}

func (s *Server) convertBO4EToEdifact(ctx context.Context, req *mcp.CallToolRequest, in convertToEdifactInput) (*mcp.CallToolResult, any, error) {
	formatVersion, err := edifact.Parse(in.EdifactFormatVersion)
	if err != nil {
		return nil, nil, err
	}
	formatVersion = s.service.ResolveFormatVersion(formatVersion)

	edi, err := s.service.ConvertToEDIFACT(ctx, in.Transaktion, formatVersion)
	if err != nil {
		s.logger.Error("error while converting BO4E to EDIFACT", "error", err)
		return nil, nil, err
	}
	s.info(ctx, req, fmt.Sprintf("Successfully converted BO4E to EDIFACT with format version %s", formatVersion))

	return textResult(edi), nil, nil
}

func (s *Server) summarizeEdifactMessage(ctx context.Context, req *mcp.CallToolRequest, in summarizeInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("summarizing EDIFACT message via MCP tool")

	formatVersion, err := edifact.Parse(in.EdifactFormatVersion)
	if err != nil {
		return nil, nil, err
	}

	notify := func(ctx context.Context, message string) {
		s.info(ctx, req, message)
	}

	summary, err := s.service.SummarizeEdifact(ctx, in.Edifact, "anonymous", formatVersion, notify)
	if err != nil {
		s.logger.Error("error while summarizing EDIFACT", "error", err)
		return nil, nil, err
	}

	return textResult(summary), nil, nil
}

// info sends an info-level logging notification to the session. Failures are
// logged locally and never fail the tool call.
func (s *Server) info(ctx context.Context, req *mcp.CallToolRequest, message string) {
	if req == nil || req.Session == nil {
		return
	}
	if err := req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level: "info",
		Data:  message,
	}); err != nil {
		s.logger.Debug("failed to send logging notification", "error", err)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
