package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/acme/autocert"
)

// isValidHost reports whether a certificate may be issued for host.
func isValidHost(domain, host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain = strings.ToLower(domain)
	return host == domain || host == "www."+domain
}

// newCertManager returns an autocert manager for domain caching
// certificates in certDir.
func newCertManager(domain, certDir string) (*autocert.Manager, error) {
	if err := os.MkdirAll(certDir, 0700); err != nil {
		return nil, fmt.Errorf("create certificate directory: %w", err)
	}

	return &autocert.Manager{
		Cache:  autocert.DirCache(certDir),
		Prompt: autocert.AcceptTOS,
		HostPolicy: func(ctx context.Context, host string) error {
			if isValidHost(domain, host) {
				log.Printf("Accepting certificate request for: %s", host)
				return nil
			}
			log.Printf("Rejecting certificate request for invalid host: %s", host)
			return fmt.Errorf("host %s not configured", host)
		},
	}, nil
}

func setupTLS(manager *autocert.Manager) *tls.Config {
	cfg := manager.TLSConfig()
	cfg.MinVersion = tls.VersionTLS12
	cfg.CurvePreferences = []tls.CurveID{tls.X25519, tls.CurveP256}
	cfg.CipherSuites = []uint16{
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	}
	return cfg
}
