package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 2)

	if l.GetLimiter("10.0.0.1") != l.GetLimiter("10.0.0.1") {
		t.Error("same IP got different limiters")
	}

	for i := 0; i < 2; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst rejected", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request beyond burst allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other IP shares the exhausted bucket")
	}
}

func TestNewConnectLimiter(t *testing.T) {
	l := newConnectLimiter(30, 5)
	if got := l.GetLimiter("x").Limit(); got != rate.Limit(0.5) {
		t.Errorf("limit = %v, want 0.5/s", got)
	}
	if got := l.GetLimiter("x").Burst(); got != 5 {
		t.Errorf("burst = %d, want 5", got)
	}
}

func TestFramePacer(t *testing.T) {
	p := newFramePacer(100)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 6; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	// One token up front, then five more at 10ms each.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("6 frames at 100fps took only %v", elapsed)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"no-port", "no-port"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if got := clientIP(r); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
