package main

import (
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"orrery/celestial"
)

func TestRecordFrame(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	frame := celestial.Frame{
		Index: 7,
		Bodies: []celestial.BodySnapshot{
			{ID: "a", Position: celestial.Vector3{X: 1}, TraceLength: 7},
			{ID: "b", Position: celestial.Vector3{Y: nan()}, TraceLength: 7},
			{ID: "c", Position: celestial.Vector3{Z: 2}, TraceLength: 7},
		},
	}
	m.RecordFrame(frame, 2*time.Millisecond)
	m.RecordFrame(frame, 3*time.Millisecond)

	tests := []struct {
		name   string
		metric prometheus.Collector
		want   float64
	}{
		{"frames", m.framesTotal, 2},
		{"bodies", m.bodies, 3},
		{"diverged", m.divergedBodies, 1},
		{"trajectory points", m.trajectoryPoints, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.metric); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(m.frameDuration); n != 1 {
		t.Errorf("frame duration histogram has %d series", n)
	}
}

func TestStreamMetrics(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.RecordMessage("in", MSG_KEYS)
	m.RecordMessage("in", MSG_KEYS)
	m.RecordMessage("out", MSG_FRAME)
	m.RecordDroppedFrame()
	m.RecordRejected("input_rate")

	if got := testutil.ToFloat64(m.streamClients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.streamMessages.WithLabelValues("in", MSG_KEYS)); got != 2 {
		t.Errorf("keys messages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.droppedFrames); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("input_rate")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollector(reg)
	m.RecordFrame(celestial.Frame{Index: 1}, time.Millisecond)

	ts := httptest.NewServer(m.Handler(reg))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "orrery_frames_total 1") {
		t.Errorf("metrics output missing frame counter:\n%s", body)
	}
}

func TestMetricsRegisterTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsCollector(reg)
	defer func() {
		if recover() == nil {
			t.Error("second registration on the same registry did not panic")
		}
	}()
	NewMetricsCollector(reg)
}

func nan() float64 { return math.NaN() }
