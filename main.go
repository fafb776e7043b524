package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"orrery/celestial"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	cfg           Config
	sim           *Simulation
	hub           *StreamHub
	metrics       *MetricsCollector
	registry      *prometheus.Registry
	connLimiter   *IPRateLimiter
	httpServer    *http.Server
	httpsServer   *http.Server
	metricsServer *http.Server
	stopLoop      context.CancelFunc
	wg            sync.WaitGroup
}

func NewServer(cfg Config, bodies []celestial.Body) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetricsCollector(registry)
	sim := NewSimulation(bodies, !cfg.NoPerturbation)

	return &Server{
		cfg:         cfg,
		sim:         sim,
		hub:         NewStreamHub(sim, metrics, NewOriginValidator(cfg.AllowedOrigins), cfg),
		metrics:     metrics,
		registry:    registry,
		connLimiter: newConnectLimiter(cfg.ConnectPerMinute, cfg.ConnectBurst),
	}
}

// Handler returns the viewer-facing HTTP routes.
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.FileServer(http.FS(static)))
	mux.HandleFunc("GET /bodies", s.handleBodies)
	mux.HandleFunc("GET /bodies/{id}/trajectory", s.handleTrajectory)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		since = n
	}

	points, err := s.sim.Trajectory(id, since)
	if errors.Is(err, ErrUnknownBody) {
		http.Error(w, fmt.Sprintf("Unknown body %q", id), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID     string              `json:"id"`
		Since  int                 `json:"since"`
		Points []celestial.Vector3 `json:"points"`
	}{id, since, points})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !s.connLimiter.Allow(clientIP(r)) {
		s.metrics.RecordRejected("connect_rate")
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}
	s.hub.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	frame := s.sim.LastFrame()
	diverged := 0
	for _, b := range frame.Bodies {
		if !b.Position.IsFinite() {
			diverged++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"frame":    frame.Index,
		"elapsed":  frame.Elapsed,
		"viewers":  s.hub.Len(),
		"diverged": diverged,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Writing response: %v", err)
	}
}

func (s *Server) runLoop(ctx context.Context) error {
	stepper := &timedStepper{next: s.sim}
	loop := &celestial.Loop{
		Stepper: stepper,
		Clock:   celestial.NewFrameClock(celestial.SystemClock{}),
		Pacer:   newFramePacer(s.cfg.FPS),
		OnFrame: func(frame celestial.Frame) {
			s.metrics.RecordFrame(frame, stepper.last)
			s.hub.Broadcast(frame)
		},
	}
	return loop.Run(ctx)
}

// timedStepper measures how long each Step of next takes.
type timedStepper struct {
	next celestial.Stepper
	last time.Duration
}

func (t *timedStepper) Step(elapsed float64) celestial.Frame {
	start := time.Now()
	frame := t.next.Step(elapsed)
	t.last = time.Since(start)
	return frame
}

func (s *Server) Start() error {
	handler := s.Handler()

	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Domain != "" {
		manager, err := newCertManager(s.cfg.Domain, s.cfg.CertDir)
		if err != nil {
			return err
		}
		s.httpsServer = &http.Server{
			Addr:              s.cfg.HTTPSAddr,
			Handler:           handler,
			TLSConfig:         setupTLS(manager),
			ReadHeaderTimeout: 10 * time.Second,
		}
		// Plain HTTP answers ACME challenges and serves everything else.
		s.httpServer.Handler = manager.HTTPHandler(handler)
	}

	if s.cfg.MetricsAddr != "" {
		s.metricsServer = &http.Server{
			Addr:    s.cfg.MetricsAddr,
			Handler: s.metrics.Handler(s.registry),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.Printf("Starting metrics server on %s", s.cfg.MetricsAddr)
			if err := s.metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Printf("Starting HTTP server on %s", s.cfg.HTTPAddr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	if s.httpsServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			log.Printf("Starting HTTPS server on %s for %s", s.cfg.HTTPSAddr, s.cfg.Domain)
			if err := s.httpsServer.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
				log.Printf("HTTPS server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Printf("Frame loop running at %v fps with %d bodies", s.cfg.FPS, len(s.sim.Bodies()))
		if err := s.runLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Frame loop stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopLoop != nil {
		s.stopLoop()
	}
	s.hub.Close()

	var errs []error
	for _, srv := range []*http.Server{s.httpServer, s.httpsServer, s.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}

	s.wg.Wait()
	return errors.Join(errs...)
}

func main() {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	if err := newRootCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
