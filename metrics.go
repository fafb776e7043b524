package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orrery/celestial"
)

type MetricsCollector struct {
	frameDuration    prometheus.Histogram
	framesTotal      prometheus.Counter
	bodies           prometheus.Gauge
	divergedBodies   prometheus.Gauge
	trajectoryPoints prometheus.Gauge
	streamClients    prometheus.Gauge
	streamMessages   *prometheus.CounterVec
	droppedFrames    prometheus.Counter
	rejected         *prometheus.CounterVec
}

func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	m := &MetricsCollector{
		frameDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orrery_frame_duration_seconds",
				Help:    "Time spent computing one simulation frame",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		framesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orrery_frames_total",
				Help: "Total number of simulation frames",
			},
		),
		bodies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_bodies",
				Help: "Number of simulated bodies",
			},
		),
		divergedBodies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_diverged_bodies",
				Help: "Bodies whose position is no longer finite",
			},
		),
		trajectoryPoints: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_trajectory_points",
				Help: "Trajectory points held across all bodies",
			},
		),
		streamClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "orrery_stream_clients",
				Help: "Connected stream viewers",
			},
		),
		streamMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_stream_messages_total",
				Help: "Stream messages by direction and type",
			},
			[]string{"direction", "type"},
		),
		droppedFrames: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "orrery_stream_dropped_frames_total",
				Help: "Frames not delivered to a viewer whose buffer was full",
			},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_rejected_total",
				Help: "Rejected connections and viewer input by reason",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(
		m.frameDuration,
		m.framesTotal,
		m.bodies,
		m.divergedBodies,
		m.trajectoryPoints,
		m.streamClients,
		m.streamMessages,
		m.droppedFrames,
		m.rejected,
	)

	return m
}

// RecordFrame observes one completed frame.
func (m *MetricsCollector) RecordFrame(frame celestial.Frame, duration time.Duration) {
	m.frameDuration.Observe(duration.Seconds())
	m.framesTotal.Inc()
	m.bodies.Set(float64(len(frame.Bodies)))

	diverged, points := 0, 0
	for _, b := range frame.Bodies {
		if !b.Position.IsFinite() {
			diverged++
		}
		points += b.TraceLength
	}
	m.divergedBodies.Set(float64(diverged))
	m.trajectoryPoints.Set(float64(points))
}

func (m *MetricsCollector) ClientConnected() {
	m.streamClients.Inc()
}

func (m *MetricsCollector) ClientDisconnected() {
	m.streamClients.Dec()
}

func (m *MetricsCollector) RecordMessage(direction, msgType string) {
	m.streamMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *MetricsCollector) RecordDroppedFrame() {
	m.droppedFrames.Inc()
}

func (m *MetricsCollector) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// Handler exposes the metrics gathered from g.
func (m *MetricsCollector) Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}
