// Package integration contains full-path tests wiring the real inbound and
// outbound adapters against stubbed upstream servers.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticVerifier accepts exactly one token and maps it to a fixed subject.
type staticVerifier struct {
	token   string
	subject string
}

func (v *staticVerifier) Verify(_ context.Context, rawToken string) (*auth.Claims, error) {
	if rawToken != v.token {
		return nil, &auth.InvalidTokenError{Reason: "signature verification failed"}
	}
	return &auth.Claims{
		Subject:   v.subject,
		Audience:  []string{"https://transformer.bee"},
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// newOllamaStub fakes the Ollama API: /api/generate answers with the given
// summary, /api/tags lists the given models. It records the last prompt.
func newOllamaStub(t *testing.T, summary string, models ...string) (*httptest.Server, func() string) {
	t.Helper()

	var mu sync.Mutex
	var lastPrompt string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		lastPrompt = req.Prompt
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"response": summary})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type model struct {
			Name string `json:"name"`
		}
		listed := make([]model, 0, len(models))
		for _, m := range models {
			listed = append(listed, model{Name: m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": listed})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	prompt := func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastPrompt
	}
	return server, prompt
}

// newTransformerBeeStub fakes the transformer.bee API. EdiToBo4E answers with
// a single-Marktnachricht interchange carrying literal backslash-n sequences
// between JSON tokens, the way the real service pretty-prints its payload.
// Bo4eToEdi answers with the given EDIFACT string.
func newTransformerBeeStub(t *testing.T, edi string) (*httptest.Server, func() string) {
	t.Helper()

	var mu sync.Mutex
	var lastEDI string

	const marktnachricht = `{"unh":"1234","transaktionen":[{"stammdaten":[{"boTyp":"MARKTLOKATION"}],"transaktionsdaten":{"Kategorie":"UTILMD"}}]}`

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transformer/EdiToBo4E", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EDI           string `json:"EDI"`
			FormatVersion string `json:"FormatVersion"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EDI == "" || req.FormatVersion == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		mu.Lock()
		lastEDI = req.EDI
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{
			"BO4E": `[\n  ` + marktnachricht + `\n]`,
		})
	})
	mux.HandleFunc("/v1/transformer/Bo4eToEdi", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BO4E          string `json:"BO4E"`
			FormatVersion string `json:"FormatVersion"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BO4E == "" || req.FormatVersion == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"EDI": edi})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	received := func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastEDI
	}
	return server, received
}
