package main

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// OriginValidator decides which browser origins may open a stream.
type OriginValidator struct {
	allowedHosts map[string]bool // Extra origin hosts beyond the serving host
}

// NewOriginValidator allows same-host origins plus the given hosts and
// their subdomains.
func NewOriginValidator(allowed []string) *OriginValidator {
	hosts := make(map[string]bool, len(allowed))
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		// Accept full origins in the list as well as bare hosts.
		if u, err := url.Parse(h); err == nil && u.Host != "" {
			h = u.Hostname()
		}
		hosts[h] = true
	}
	return &OriginValidator{allowedHosts: hosts}
}

// CheckOrigin is a websocket.Upgrader CheckOrigin function. Requests with
// no Origin header come from non-browser clients and are allowed.
func (v *OriginValidator) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return v.IsAllowedHost(u.Hostname())
}

// IsAllowedHost checks if host (or a parent domain) is in the allow list.
func (v *OriginValidator) IsAllowedHost(host string) bool {
	if host == "" {
		return false
	}
	lowerHost := strings.ToLower(host)
	if h, _, err := net.SplitHostPort(lowerHost); err == nil {
		lowerHost = h
	}

	if v.allowedHosts[lowerHost] {
		return true
	}

	for allowed := range v.allowedHosts {
		if strings.HasSuffix(lowerHost, "."+allowed) {
			return true
		}
	}
	return false
}
