package main

import (
	"errors"
	"sync"
	"testing"

	"orrery/celestial"
)

func TestSimulationSnapshot(t *testing.T) {
	sim := NewSimulation(testCatalog(), true)

	before := sim.Snapshot()
	if before.Frame != 0 || len(before.Bodies) != 4 {
		t.Fatalf("initial snapshot = %+v", before)
	}
	for _, b := range before.Bodies {
		if want := celestial.OrbitalPosition(b.Body, 0); b.Position != want {
			t.Errorf("%s starts at %+v, want %+v", b.ID, b.Position, want)
		}
	}

	frame := sim.Step(2)
	after := sim.Snapshot()
	if after.Frame != 1 || after.Elapsed != 2 {
		t.Errorf("snapshot frame %d at %v, want 1 at 2", after.Frame, after.Elapsed)
	}
	for i, b := range after.Bodies {
		if b.Position != frame.Bodies[i].Position || b.TraceLength != 1 {
			t.Errorf("%s snapshot %+v does not match frame %+v", b.ID, b, frame.Bodies[i])
		}
	}
	if sim.LastFrame().Index != 1 {
		t.Errorf("LastFrame index = %d", sim.LastFrame().Index)
	}
}

func TestSimulationLocate(t *testing.T) {
	sim := NewSimulation(testCatalog(), false)
	sim.Step(10)

	pos, radius, err := sim.Locate("sun")
	if err != nil || pos != (celestial.Vector3{}) || radius != celestial.Sun().Radius {
		t.Errorf("Locate(sun) = %+v, %v, %v", pos, radius, err)
	}

	pos, radius, err = sim.Locate("earth")
	if err != nil {
		t.Fatal(err)
	}
	earth := testCatalog()[2]
	if want := celestial.Advance(earth, 10, celestial.Vector3{}); pos != want || radius != earth.Radius {
		t.Errorf("Locate(earth) = %+v r=%v, want %+v r=%v", pos, radius, want, earth.Radius)
	}

	if _, _, err := sim.Locate("vulcan"); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Locate(vulcan) error = %v", err)
	}
	if _, err := sim.Trajectory("vulcan", 0); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Trajectory(vulcan) error = %v", err)
	}
}

func TestSimulationTogglePerturbation(t *testing.T) {
	perturbed := NewSimulation(testCatalog(), true)
	plain := NewSimulation(testCatalog(), true)
	plain.SetPerturbation(false)

	if !perturbed.Perturbation() || plain.Perturbation() {
		t.Fatal("Perturbation() does not reflect the setting")
	}

	p := perturbed.Step(1)
	q := plain.Step(1)
	if p.Bodies[0].Position == q.Bodies[0].Position {
		t.Error("perturbation had no effect on Mercury")
	}
}

// Run with -race: readers and the stepping goroutine must not conflict.
func TestSimulationConcurrentAccess(t *testing.T) {
	sim := NewSimulation(testCatalog(), true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			sim.Step(float64(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap := sim.Snapshot()
				for _, b := range snap.Bodies {
					if b.TraceLength != int(snap.Frame) {
						t.Errorf("%s has %d points in frame %d", b.ID, b.TraceLength, snap.Frame)
						return
					}
				}
				if _, err := sim.Trajectory("earth", i); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got, _ := sim.Trajectory("earth", 0); len(got) != 200 {
		t.Errorf("earth has %d points after 200 frames", len(got))
	}
}
