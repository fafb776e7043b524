package main

import (
	"net/http/httptest"
	"testing"
)

func TestCheckOrigin(t *testing.T) {
	v := NewOriginValidator([]string{"viewer.example", "https://Dashboard.Example:8443", " "})

	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{"no origin header", "orrery.local:8080", "", true},
		{"same host", "orrery.local:8080", "http://orrery.local:8080", true},
		{"same host different case", "orrery.local:8080", "http://ORRERY.local:8080", true},
		{"same name other port", "orrery.local:8080", "http://orrery.local:9999", false},
		{"allowed host", "orrery.local", "https://viewer.example", true},
		{"allowed subdomain", "orrery.local", "https://a.viewer.example", true},
		{"allowed from full origin entry", "orrery.local", "https://dashboard.example", true},
		{"suffix without dot", "orrery.local", "https://badviewer.example", false},
		{"foreign", "orrery.local", "https://evil.example", false},
		{"unparseable", "orrery.local", "://", false},
		{"opaque origin", "orrery.local", "null", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/stream", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := v.CheckOrigin(r); got != tt.want {
				t.Errorf("CheckOrigin(%q on %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}

func TestIsAllowedHostEmpty(t *testing.T) {
	v := NewOriginValidator(nil)
	if v.IsAllowedHost("") {
		t.Error("empty host allowed")
	}
	if v.IsAllowedHost("anything.example") {
		t.Error("empty allow list accepted a host")
	}
}
