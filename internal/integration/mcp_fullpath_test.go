package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/inbound/mcptool"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/ollama"
	"github.com/hochfrequenz/transformerbee-mcp/internal/adapter/outbound/transformerbee"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

// connectMCPStack wires the MCP tool server with real outbound adapters
// pointed at stub upstreams and returns a connected client session, mirroring
// the mcp command's wiring (no rate limiter on this surface).
func connectMCPStack(t *testing.T) *mcp.ClientSession {
	t.Helper()
	logger := testLogger()

	ollamaStub, _ := newOllamaStub(t, "Die Marktlokation wird angemeldet.", "llama3:latest")
	beeStub, _ := newTransformerBeeStub(t, "UNB+UNOC:3'")

	converter := transformerbee.NewClient(beeStub.URL, logger)
	t.Cleanup(converter.Shutdown)
	summarizer := ollama.NewClient(logger, ollama.WithHost(ollamaStub.URL))

	svc := service.NewSummarizeService(nil, converter, summarizer, logger)
	server := mcptool.NewServer(svc, "0.0.0-test", logger)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		<-serverDone
	})
	return session
}

func TestMCPFullPath_ConvertEdifactToBO4E(t *testing.T) {
	session := connectMCPStack(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "convert_edifact_to_bo4e",
		Arguments: map[string]any{
			"edifact":                "UNB+UNOC:3+9900123456789'",
			"edifact_format_version": "FV2504",
		},
	})
	if err != nil {
		t.Fatalf("CallTool(): %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	structured, ok := result.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("StructuredContent = %T, want object", result.StructuredContent)
	}
	transaktionsdaten, ok := structured["transaktionsdaten"].(map[string]any)
	if !ok || transaktionsdaten["Kategorie"] != "UTILMD" {
		t.Errorf("structured content = %v", structured)
	}
}

func TestMCPFullPath_ConvertBO4EToEdifact(t *testing.T) {
	session := connectMCPStack(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "convert_bo4e_to_edifact",
		Arguments: map[string]any{
			"transaktion": map[string]any{
				"stammdaten":        []any{map[string]any{"boTyp": "MARKTLOKATION"}},
				"transaktionsdaten": map[string]any{"Kategorie": "UTILMD"},
			},
		},
	})
	if err != nil {
		t.Fatalf("CallTool(): %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if text := firstText(result); text != "UNB+UNOC:3'" {
		t.Errorf("text = %q", text)
	}
}

func TestMCPFullPath_SummarizeEdifactMessage(t *testing.T) {
	session := connectMCPStack(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "summarize_edifact_message",
		Arguments: map[string]any{"edifact": "UNB+UNOC:3+9900123456789'"},
	})
	if err != nil {
		t.Fatalf("CallTool(): %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}
	if text := firstText(result); !strings.Contains(text, "Marktlokation") {
		t.Errorf("summary = %q", text)
	}
}

func firstText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
