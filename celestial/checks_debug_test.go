//go:build debugchecks
// +build debugchecks

package celestial

import "testing"

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestDebugChecksPanic(t *testing.T) {
	expectPanic(t, "zero period", func() {
		body := circularBody()
		body.OrbitalPeriod = 0
		OrbitalPosition(body, 1)
	})

	expectPanic(t, "coincident bodies", func() {
		p := Vector3{X: 1}
		Accelerations([]PointMass{{Mass: 1, Position: p}, {Mass: 1, Position: p}})
	})
}

func TestFullCatalogPanicsOnFirstFrame(t *testing.T) {
	u := NewFrameUpdater(SolarSystemBodies())
	expectPanic(t, "NEOWISE pair", func() { u.Step(1) })

	u = NewFrameUpdater(SolarSystemBodies())
	u.SetPerturbation(false)
	if f := u.Step(1); len(f.Bodies) != len(SolarSystemBodies()) {
		t.Errorf("unperturbed step returned %d bodies", len(f.Bodies))
	}
}
