package celestial

// Advance computes a body's final position for one frame: the Keplerian
// position at t, displaced by the scaled pseudo-acceleration, then tilted
// about +X by the orbital inclination.
func Advance(body Body, t float64, accel Vector3) Vector3 {
	base := OrbitalPosition(body, t)
	displaced := base.Add(accel.Scale(TIME_STEP_SCALE))
	return displaced.RotateX(body.InclinationRadians())
}

// BodyState is everything that changes for one body across frames.
type BodyState struct {
	Body       Body
	Position   Vector3
	Trajectory *Trajectory
}

// BodySnapshot is one body's entry in a Frame.
type BodySnapshot struct {
	ID       string  `json:"id"`
	Position Vector3 `json:"position"`
	// TraceLength counts trajectory points including this frame's.
	TraceLength int `json:"trace_length"`
}

// Frame is the result of one Step, in catalog order.
type Frame struct {
	Index   uint64         `json:"index"`
	Elapsed float64        `json:"elapsed"`
	Bodies  []BodySnapshot `json:"bodies"`
}

// FrameUpdater owns the registry of body states and advances all of them
// together. It is not safe for concurrent use.
type FrameUpdater struct {
	order   []string
	states  map[string]*BodyState
	frames  uint64
	perturb bool
}

// NewFrameUpdater registers the bodies in the given order. Each starts at
// its untilted Keplerian position for t = 0 with an empty trajectory.
// Bodies sharing an ID replace the earlier entry; use ValidateCatalog first
// to reject such input.
func NewFrameUpdater(bodies []Body) *FrameUpdater {
	u := &FrameUpdater{
		order:   make([]string, 0, len(bodies)),
		states:  make(map[string]*BodyState, len(bodies)),
		perturb: true,
	}
	for _, b := range bodies {
		if _, exists := u.states[b.ID]; !exists {
			u.order = append(u.order, b.ID)
		}
		u.states[b.ID] = &BodyState{
			Body:       b,
			Position:   OrbitalPosition(b, 0),
			Trajectory: &Trajectory{},
		}
	}
	return u
}

// Step advances every body to elapsed time t. All positions are read and
// all accelerations computed before any body moves, so the result does
// not depend on iteration order.
func (u *FrameUpdater) Step(t float64) Frame {
	points := make([]PointMass, len(u.order))
	for i, id := range u.order {
		s := u.states[id]
		points[i] = PointMass{Mass: s.Body.Mass, Position: s.Position}
	}

	var accelerations []Vector3
	if u.perturb {
		accelerations = Accelerations(points)
	} else {
		accelerations = make([]Vector3, len(points))
	}

	u.frames++
	frame := Frame{
		Index:   u.frames,
		Elapsed: t,
		Bodies:  make([]BodySnapshot, len(u.order)),
	}
	for i, id := range u.order {
		s := u.states[id]
		s.Position = Advance(s.Body, t, accelerations[i])
		s.Trajectory.Append(s.Position)
		frame.Bodies[i] = BodySnapshot{
			ID:          id,
			Position:    s.Position,
			TraceLength: s.Trajectory.Len(),
		}
	}
	return frame
}

// SetPerturbation turns the pairwise pseudo-force on or off. It is on by
// default; with it off every body follows its plain tilted Kepler orbit.
func (u *FrameUpdater) SetPerturbation(enabled bool) {
	u.perturb = enabled
}

// Perturbation reports whether the pseudo-force is applied.
func (u *FrameUpdater) Perturbation() bool {
	return u.perturb
}

// Bodies returns the registered bodies in catalog order.
func (u *FrameUpdater) Bodies() []Body {
	out := make([]Body, len(u.order))
	for i, id := range u.order {
		out[i] = u.states[id].Body
	}
	return out
}

// State returns the live state for id. The pointer is owned by the updater.
func (u *FrameUpdater) State(id string) (*BodyState, bool) {
	s, ok := u.states[id]
	return s, ok
}

// Positions returns the current position of every body keyed by ID.
func (u *FrameUpdater) Positions() map[string]Vector3 {
	out := make(map[string]Vector3, len(u.states))
	for id, s := range u.states {
		out[id] = s.Position
	}
	return out
}

// Frames returns how many times Step has run.
func (u *FrameUpdater) Frames() uint64 {
	return u.frames
}
