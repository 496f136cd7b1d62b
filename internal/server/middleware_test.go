package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractFirstIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"127.0.0.1", "127.0.0.1"},
		{"127.0.0.1, 192.168.1.1", "127.0.0.1"},
		{"10.0.0.1, 10.0.0.2, 10.0.0.3", "10.0.0.1"},
		{"", ""},
		{"   1.2.3.4   ", "1.2.3.4"},
	}

	for _, tt := range tests {
		if got := extractFirstIP(tt.input); got != tt.expected {
			t.Errorf("extractFirstIP(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStripPort(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"127.0.0.1:8080", "127.0.0.1"},
		{"192.168.1.1", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"[::1]", "::1"},
	}

	for _, tt := range tests {
		if got := stripPort(tt.input); got != tt.expected {
			t.Errorf("stripPort(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"X-Forwarded-For", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "3.3.3.3:1234", "1.1.1.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": " 4.4.4.4 "}, "3.3.3.3:1234", "4.4.4.4"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "5.5.5.5", "X-Real-IP": "6.6.6.6"}, "3.3.3.3:1", "5.5.5.5"},
		{"RemoteAddr", nil, "3.3.3.3:1234", "3.3.3.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Errorf("getClientIP() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected within burst", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over the burst was allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("another client shares the first client's bucket")
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 10})
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	rl.limiterFor("5.6.7.8", time.Now().Add(-time.Hour))
	if n := rl.clientCount(); n != 2 {
		t.Fatalf("clientCount() = %d, want 2", n)
	}

	rl.evictIdle(time.Now().Add(-time.Minute))
	if n := rl.clientCount(); n != 1 {
		t.Errorf("clientCount() after eviction = %d, want 1", n)
	}
}

func TestRateLimiterCleanupLoop(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 10, CleanupInterval: 10 * time.Millisecond, IdleTTL: time.Nanosecond})
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	deadline := time.Now().Add(time.Second)
	for rl.clientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle client was never cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

func TestSecurityMiddleware(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) { called = true }

	t.Run("headers", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()
		SecurityMiddleware(DefaultSecurityConfig(), next)(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
		if !called {
			t.Error("next handler not called")
		}
		for header, want := range map[string]string{
			"X-Content-Type-Options":      "nosniff",
			"X-Frame-Options":             "DENY",
			"Access-Control-Allow-Origin": "*",
		} {
			if got := w.Header().Get(header); got != want {
				t.Errorf("%s = %q, want %q", header, got, want)
			}
		}
	})

	t.Run("preflight", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()
		SecurityMiddleware(DefaultSecurityConfig(), next)(w, httptest.NewRequest(http.MethodOptions, "/calculate", http.NoBody))
		if called {
			t.Error("preflight reached the handler")
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
	})

	t.Run("origin not allowed", func(t *testing.T) {
		cfg := SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"https://a.example"}, AllowedMethods: []string{"GET"}}
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("Origin", "https://b.example")
		w := httptest.NewRecorder()
		SecurityMiddleware(cfg, next)(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("origin allowed", func(t *testing.T) {
		cfg := SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"https://a.example"}, AllowedMethods: []string{"GET"}}
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("Origin", "https://a.example")
		w := httptest.NewRecorder()
		SecurityMiddleware(cfg, next)(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://a.example" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if w.Header().Get("Vary") != "Origin" {
			t.Error("Vary: Origin missing")
		}
	})
}
