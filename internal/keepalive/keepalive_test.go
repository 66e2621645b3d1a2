package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(srv.URL, "*/14 6-23 * * *", time.UTC)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
}

func TestPingNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, "*/14 6-23 * * *", time.UTC)
	if err := p.Ping(context.Background()); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestStartInvalidSchedule(t *testing.T) {
	p := New("http://localhost:1/warmup", "not a schedule", time.UTC)
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartWithoutURL(t *testing.T) {
	p := New("", "*/14 6-23 * * *", time.UTC)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty URL should be a no-op, got %v", err)
	}
	p.Stop()
}

func TestStartValidSchedule(t *testing.T) {
	p := New("http://localhost:1/warmup", "*/14 6-23 * * *", time.UTC)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	p.Stop()
}
