package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/port/outbound"
)

func TestClient_Summarize(t *testing.T) {
	t.Parallel()

	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"Dies ist eine Testzusammenfassung.","done":true}`))
	}))
	defer srv.Close()

	client := NewClient(nil, WithHost(srv.URL), WithModel("llama3"))

	summary, err := client.Summarize(context.Background(), `[{"unh":"1234"}]`)
	if err != nil {
		t.Fatalf("Summarize(): unexpected error %v", err)
	}
	if summary != "Dies ist eine Testzusammenfassung." {
		t.Errorf("summary = %q", summary)
	}

	if gotPayload["model"] != "llama3" {
		t.Errorf("payload model = %v, want llama3", gotPayload["model"])
	}
	if gotPayload["prompt"] != `[{"unh":"1234"}]` {
		t.Errorf("payload prompt = %v", gotPayload["prompt"])
	}
	if gotPayload["stream"] != false {
		t.Errorf("payload stream = %v, want false", gotPayload["stream"])
	}
	system, _ := gotPayload["system"].(string)
	if !strings.Contains(system, "BO4E") || !strings.Contains(system, "Energiemarkt") {
		t.Errorf("payload system prompt missing expected content: %q", system)
	}
}

func TestClient_SummarizeStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(nil, WithHost(srv.URL))

	_, err := client.Summarize(context.Background(), "{}")
	var statusErr *outbound.SummarizerStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Summarize() = %v, want *SummarizerStatusError", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("status code = %d, want 500", statusErr.Code)
	}
}

func TestClient_SummarizeUnreachable(t *testing.T) {
	t.Parallel()

	// A closed server guarantees a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(nil, WithHost(srv.URL))

	_, err := client.Summarize(context.Background(), "{}")
	if !errors.Is(err, outbound.ErrSummarizerUnreachable) {
		t.Fatalf("Summarize() = %v, want ErrSummarizerUnreachable", err)
	}
}

func TestClient_SummarizeTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(nil, WithHost(srv.URL), WithGenerateTimeout(50*time.Millisecond))

	_, err := client.Summarize(context.Background(), "{}")
	if !errors.Is(err, outbound.ErrSummarizerTimeout) {
		t.Fatalf("Summarize() = %v, want ErrSummarizerTimeout", err)
	}
}

func TestClient_CheckHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		model          string
		tagsBody       string
		wantAvailable  bool
		wantErrSubstr  string
	}{
		{
			name:          "exact name with tag",
			model:         "llama3:latest",
			tagsBody:      `{"models":[{"name":"llama3:latest"},{"name":"mistral:7b"}]}`,
			wantAvailable: true,
		},
		{
			name:          "bare name matches tagged listing",
			model:         "llama3",
			tagsBody:      `{"models":[{"name":"llama3:latest"}]}`,
			wantAvailable: true,
		},
		{
			name:          "model missing",
			model:         "llama3",
			tagsBody:      `{"models":[{"name":"mistral:7b"}]}`,
			wantAvailable: false,
			wantErrSubstr: "Model 'llama3' not found",
		},
		{
			name:          "empty listing",
			model:         "llama3",
			tagsBody:      `{"models":[]}`,
			wantAvailable: false,
			wantErrSubstr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.tagsBody))
			}))
			defer srv.Close()

			client := NewClient(nil, WithHost(srv.URL), WithModel(tt.model))

			snapshot := client.CheckHealth(context.Background())
			if !snapshot.Reachable {
				t.Error("Reachable = false, want true")
			}
			if snapshot.ModelAvailable != tt.wantAvailable {
				t.Errorf("ModelAvailable = %v, want %v", snapshot.ModelAvailable, tt.wantAvailable)
			}
			if tt.wantErrSubstr != "" && !strings.Contains(snapshot.Error, tt.wantErrSubstr) {
				t.Errorf("Error = %q, want substring %q", snapshot.Error, tt.wantErrSubstr)
			}
			if snapshot.Model != tt.model {
				t.Errorf("Model = %q, want %q", snapshot.Model, tt.model)
			}
		})
	}
}

func TestClient_CheckHealthUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(nil, WithHost(srv.URL))

	snapshot := client.CheckHealth(context.Background())
	if snapshot.Reachable {
		t.Error("Reachable = true, want false")
	}
	if snapshot.ModelAvailable {
		t.Error("ModelAvailable = true, want false")
	}
	if !strings.Contains(snapshot.Error, "Cannot connect to Ollama") {
		t.Errorf("Error = %q, want connect failure text", snapshot.Error)
	}
}

func TestClient_CheckHealthServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(nil, WithHost(srv.URL))

	snapshot := client.CheckHealth(context.Background())
	if !snapshot.Reachable {
		t.Error("Reachable = false, want true (server answered)")
	}
	if snapshot.ModelAvailable {
		t.Error("ModelAvailable = true, want false")
	}
	if !strings.Contains(snapshot.Error, "Ollama returned error: 503") {
		t.Errorf("Error = %q", snapshot.Error)
	}
}
