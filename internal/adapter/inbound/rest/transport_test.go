package rest

import (
	"context"
	"testing"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

func TestTransport_StartAndShutdown(t *testing.T) {
	// Integration test: verify Start() brings the server up and a context
	// cancel shuts it down cleanly.
	svc := service.NewSummarizeService(nil, &stubConverter{}, &stubSummarizer{}, nil)
	transport := NewTransport(svc, &stubVerifier{subject: "user123"},
		WithAddr("127.0.0.1:0"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- transport.Start(ctx)
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5 seconds after cancel")
	}
}

func TestTransport_CloseWithoutStart(t *testing.T) {
	t.Parallel()

	svc := service.NewSummarizeService(nil, &stubConverter{}, &stubSummarizer{}, nil)
	transport := NewTransport(svc, &stubVerifier{subject: "user123"})
	if err := transport.Close(); err != nil {
		t.Errorf("Close() before Start() = %v, want nil", err)
	}
}
