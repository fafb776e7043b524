package celestial

// Trajectory is the append-only trace of positions a body has been drawn at.
// It never evicts; its lifetime is the session.
type Trajectory struct {
	points []Vector3
}

// Append records one position.
func (t *Trajectory) Append(p Vector3) {
	t.points = append(t.points, p)
}

// Len returns the number of recorded positions.
func (t *Trajectory) Len() int {
	return len(t.points)
}

// Points returns a copy of the whole trace.
func (t *Trajectory) Points() []Vector3 {
	return t.Since(0)
}

// Since returns a copy of the points recorded at index n and later. An n
// past the end yields an empty slice.
func (t *Trajectory) Since(n int) []Vector3 {
	if n < 0 {
		n = 0
	}
	if n >= len(t.points) {
		return []Vector3{}
	}
	out := make([]Vector3, len(t.points)-n)
	copy(out, t.points[n:])
	return out
}

// Last returns the most recent point and whether there is one.
func (t *Trajectory) Last() (Vector3, bool) {
	if len(t.points) == 0 {
		return Vector3{}, false
	}
	return t.points[len(t.points)-1], true
}
