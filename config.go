package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Environment variable prefix for every setting
const ENV_PREFIX = "ORRERY_"

// Config holds the harness settings. Values come from defaults, then
// ORRERY_* environment variables, then command-line flags.
type Config struct {
	HTTPAddr    string
	HTTPSAddr   string
	MetricsAddr string

	FPS            float64 // frame loop rate
	CatalogPath    string  // empty means the built-in solar system
	NoPerturbation bool

	Domain         string // enables autocert when set
	CertDir        string
	AllowedOrigins []string

	ConnectPerMinute float64 // websocket connects per client IP
	ConnectBurst     int
	InputPerSecond   float64 // viewer input messages per session
	InputBurst       int
	SendBuffer       int // queued frames per viewer before dropping

	ShutdownTimeout time.Duration
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:         ":8080",
		HTTPSAddr:        ":8443",
		MetricsAddr:      ":9090",
		FPS:              30,
		CertDir:          "certs",
		ConnectPerMinute: 30,
		ConnectBurst:     5,
		InputPerSecond:   120,
		InputBurst:       30,
		SendBuffer:       8,
		ShutdownTimeout:  30 * time.Second,
	}
}

// ApplyEnv overrides fields from ORRERY_* variables looked up with getenv.
// Unset or empty variables leave the field untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := getenv(ENV_PREFIX + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *float64) {
		if v := getenv(ENV_PREFIX + name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", ENV_PREFIX, name, err))
				return
			}
			*dst = f
		}
	}
	integer := func(name string, dst *int) {
		if v := getenv(ENV_PREFIX + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", ENV_PREFIX, name, err))
				return
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("HTTPS_ADDR", &c.HTTPSAddr)
	str("METRICS_ADDR", &c.MetricsAddr)
	num("FPS", &c.FPS)
	str("CATALOG", &c.CatalogPath)
	str("DOMAIN", &c.Domain)
	str("CERT_DIR", &c.CertDir)
	num("CONNECT_PER_MINUTE", &c.ConnectPerMinute)
	integer("CONNECT_BURST", &c.ConnectBurst)
	num("INPUT_PER_SECOND", &c.InputPerSecond)
	integer("INPUT_BURST", &c.InputBurst)
	integer("SEND_BUFFER", &c.SendBuffer)

	if v := getenv(ENV_PREFIX + "ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := getenv(ENV_PREFIX + "NO_PERTURBATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sNO_PERTURBATION: %w", ENV_PREFIX, err))
		} else {
			c.NoPerturbation = b
		}
	}
	if v := getenv(ENV_PREFIX + "SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", ENV_PREFIX, err))
		} else {
			c.ShutdownTimeout = d
		}
	}

	return errors.Join(errs...)
}

// bindSimulationFlags registers the flags every command shares. The current
// field values become the flag defaults, so flags override env.
func (c *Config) bindSimulationFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&c.CatalogPath, "catalog", c.CatalogPath, "JSON body catalog (default: built-in solar system)")
	f.BoolVar(&c.NoPerturbation, "no-perturbation", c.NoPerturbation, "disable the pairwise pseudo-force")
	f.Float64Var(&c.FPS, "fps", c.FPS, "frame loop rate")
}

// bindServeFlags registers the flags of the serve command.
func (c *Config) bindServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.HTTPAddr, "addr", c.HTTPAddr, "HTTP listen address")
	f.StringVar(&c.HTTPSAddr, "https-addr", c.HTTPSAddr, "HTTPS listen address, used with --domain")
	f.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Prometheus listen address, empty to disable")
	f.StringVar(&c.Domain, "domain", c.Domain, "serve HTTPS for this domain via Let's Encrypt")
	f.StringVar(&c.CertDir, "cert-dir", c.CertDir, "certificate cache directory")
	f.StringSliceVar(&c.AllowedOrigins, "allowed-origin", c.AllowedOrigins, "extra websocket origin hosts")
	f.Float64Var(&c.ConnectPerMinute, "connect-rate", c.ConnectPerMinute, "stream connections per minute per client IP")
	f.IntVar(&c.ConnectBurst, "connect-burst", c.ConnectBurst, "stream connection burst per client IP")
	f.Float64Var(&c.InputPerSecond, "input-rate", c.InputPerSecond, "viewer input messages per second")
	f.IntVar(&c.InputBurst, "input-burst", c.InputBurst, "viewer input burst")
	f.IntVar(&c.SendBuffer, "send-buffer", c.SendBuffer, "frames queued per viewer before dropping")
	f.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "grace period for open requests")
}

// Validate rejects settings the harness cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %v", c.FPS))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address must not be empty"))
	}
	if c.ConnectPerMinute <= 0 || c.ConnectBurst < 1 {
		errs = append(errs, fmt.Errorf("invalid connect rate %v burst %d", c.ConnectPerMinute, c.ConnectBurst))
	}
	if c.InputPerSecond <= 0 || c.InputBurst < 1 {
		errs = append(errs, fmt.Errorf("invalid input rate %v burst %d", c.InputPerSecond, c.InputBurst))
	}
	if c.SendBuffer < 1 {
		errs = append(errs, fmt.Errorf("send buffer must be at least 1, got %d", c.SendBuffer))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
