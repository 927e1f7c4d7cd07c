package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 3, CleanupInterval: time.Hour})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("fourth request should be rejected")
	}

	// Other clients have independent windows.
	if !l.Allow("10.0.0.2") {
		t.Error("different client should be allowed")
	}

	if got := l.ActiveClients(); got != 2 {
		t.Errorf("ActiveClients() = %d, want 2", got)
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Hour})
	defer l.Stop()

	if !l.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("second request should be rejected")
	}

	// Age the window past a minute and the counter resets.
	l.mu.Lock()
	l.clients["10.0.0.1"].windowStart = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	if !l.Allow("10.0.0.1") {
		t.Error("request after window reset should be allowed")
	}
}

func TestLimiter_RemoveStale(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 10, CleanupInterval: time.Hour})
	defer l.Stop()

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")

	l.mu.Lock()
	l.clients["10.0.0.1"].windowStart = time.Now().Add(-20 * time.Minute)
	l.mu.Unlock()

	l.removeStale()

	if got := l.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1 after cleanup", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Hour})
	defer l.Stop()

	handler := l.Middleware(func(r *http.Request) string { return "10.0.0.1" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	l.Stop()
	l.Stop()
}
