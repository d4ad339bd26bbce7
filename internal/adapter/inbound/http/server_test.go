package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	s := NewServer(newFixture().storefront(), WithAddr("127.0.0.1:0"), WithRegistry(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestServer_StartReportsListenError(t *testing.T) {
	s := NewServer(newFixture().storefront(), WithAddr("127.0.0.1:-1"), WithRegistry(prometheus.NewRegistry()))

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail on an invalid address")
	}
}

func TestServer_CloseBeforeStart(t *testing.T) {
	s := NewServer(newFixture().storefront())
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	_, h := newTestServer(t, newFixture())
	_ = do(t, h, http.MethodGet, "/api/posts", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `wept_api_requests_total{method="GET",route="/api/posts",status="ok"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
