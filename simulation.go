package main

import (
	"errors"
	"sync"

	"orrery/celestial"
)

var ErrUnknownBody = errors.New("unknown body")

// Simulation serialises access to a FrameUpdater. The frame loop takes the
// write lock for a whole Step, so readers never observe half a frame.
type Simulation struct {
	mu      sync.RWMutex
	updater *celestial.FrameUpdater
	sun     celestial.Body
	last    celestial.Frame
}

// BodyView is one body as reported to viewers.
type BodyView struct {
	celestial.Body
	Position    celestial.Vector3 `json:"position"`
	TraceLength int               `json:"trace_length"`
	TrailColor  string            `json:"trail_color"`
}

// Snapshot is the whole system at the most recent frame.
type Snapshot struct {
	Frame   uint64     `json:"frame"`
	Elapsed float64    `json:"elapsed"`
	Sun     BodyView   `json:"sun"`
	Bodies  []BodyView `json:"bodies"`
}

func NewSimulation(bodies []celestial.Body, perturb bool) *Simulation {
	u := celestial.NewFrameUpdater(bodies)
	u.SetPerturbation(perturb)
	return &Simulation{
		updater: u,
		sun:     celestial.Sun(),
	}
}

// Step runs one frame at elapsed seconds. It satisfies celestial.Stepper.
func (s *Simulation) Step(elapsed float64) celestial.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.updater.Step(elapsed)
	return s.last
}

// SetPerturbation switches the pseudo-force between frames.
func (s *Simulation) SetPerturbation(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updater.SetPerturbation(enabled)
}

func (s *Simulation) Perturbation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updater.Perturbation()
}

// LastFrame returns the most recent frame, or the zero Frame before the
// first Step.
func (s *Simulation) LastFrame() celestial.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Bodies returns the orbiting bodies in catalog order.
func (s *Simulation) Bodies() []celestial.Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updater.Bodies()
}

func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bodies := s.updater.Bodies()
	snap := Snapshot{
		Frame:   s.last.Index,
		Elapsed: s.last.Elapsed,
		Sun:     BodyView{Body: s.sun, TrailColor: TrailColor(s.sun)},
		Bodies:  make([]BodyView, len(bodies)),
	}
	for i, b := range bodies {
		st, _ := s.updater.State(b.ID)
		snap.Bodies[i] = BodyView{
			Body:        b,
			Position:    st.Position,
			TraceLength: st.Trajectory.Len(),
			TrailColor:  TrailColor(b),
		}
	}
	return snap
}

// Trajectory returns the trace of id from point index since onwards.
func (s *Simulation) Trajectory(id string, since int) ([]celestial.Vector3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.updater.State(id)
	if !ok {
		return nil, ErrUnknownBody
	}
	return st.Trajectory.Since(since), nil
}

// Locate returns where id currently is and its radius. The Sun sits at the
// origin.
func (s *Simulation) Locate(id string) (celestial.Vector3, float64, error) {
	if id == s.sun.ID {
		return celestial.Vector3{}, s.sun.Radius, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.updater.State(id)
	if !ok {
		return celestial.Vector3{}, 0, ErrUnknownBody
	}
	return st.Position, st.Body.Radius, nil
}
