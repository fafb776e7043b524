package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func TestNewRig(t *testing.T) {
	r := NewRig()
	pose := r.Pose()

	if pose.Position != START_POSITION {
		t.Errorf("start position = %v, want %v", pose.Position, START_POSITION)
	}
	if pose.FOV != START_FOV {
		t.Errorf("start fov = %v, want %v", pose.FOV, START_FOV)
	}
	if !pose.Direction.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, eps) {
		t.Errorf("start direction = %v, want -Z", pose.Direction)
	}
	if d := r.MovementDelta(); d != (mgl64.Vec3{}) {
		t.Errorf("no keys held but delta = %v", d)
	}
}

func TestMovementDelta(t *testing.T) {
	tests := []struct {
		name string
		keys Keys
		want mgl64.Vec3
	}{
		{"forward", Keys{Forward: true}, mgl64.Vec3{0, 0, -MOVE_SPEED}},
		{"back", Keys{Back: true}, mgl64.Vec3{0, 0, MOVE_SPEED}},
		{"left", Keys{Left: true}, mgl64.Vec3{-MOVE_SPEED, 0, 0}},
		{"right", Keys{Right: true}, mgl64.Vec3{MOVE_SPEED, 0, 0}},
		{"up", Keys{Up: true}, mgl64.Vec3{0, MOVE_SPEED, 0}},
		{"down", Keys{Down: true}, mgl64.Vec3{0, -MOVE_SPEED, 0}},
		{"opposite keys cancel", Keys{Forward: true, Back: true, Left: true, Right: true}, mgl64.Vec3{}},
		{"diagonal", Keys{Forward: true, Right: true, Up: true}, mgl64.Vec3{MOVE_SPEED, MOVE_SPEED, -MOVE_SPEED}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRig()
			r.SetKeys(tt.keys)
			if got := r.MovementDelta(); !got.ApproxEqualThreshold(tt.want, eps) {
				t.Errorf("MovementDelta() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovementFollowsYaw(t *testing.T) {
	r := NewRig()
	// Quarter turn to the left: the view now points down -X.
	r.PointerMove(-math.Pi/2/LOOK_SENSITIVITY, 0)

	if dir := r.Direction(); !dir.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-6) {
		t.Fatalf("direction after yaw = %v, want -X", dir)
	}

	r.SetKeys(Keys{Forward: true})
	if got := r.MovementDelta(); !got.ApproxEqualThreshold(mgl64.Vec3{-MOVE_SPEED, 0, 0}, 1e-6) {
		t.Errorf("forward after yaw = %v", got)
	}
	r.SetKeys(Keys{Right: true})
	if got := r.MovementDelta(); !got.ApproxEqualThreshold(mgl64.Vec3{0, 0, -MOVE_SPEED}, 1e-6) {
		t.Errorf("strafe after yaw = %v", got)
	}
}

func TestPitchIsClamped(t *testing.T) {
	r := NewRig()
	r.PointerMove(0, -1e6)
	if got := r.Pose().Pitch; got != math.Pi/2 {
		t.Errorf("pitch = %v, want clamp at pi/2", got)
	}
	r.PointerMove(0, 2e6)
	if got := r.Pose().Pitch; got != -math.Pi/2 {
		t.Errorf("pitch = %v, want clamp at -pi/2", got)
	}

	// Looking straight down still produces a finite strafe.
	r.SetKeys(Keys{Left: true, Forward: true})
	d := r.MovementDelta()
	for _, c := range d {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("delta at the pole = %v", d)
		}
	}
}

func TestZoomClamps(t *testing.T) {
	r := NewRig()
	r.Zoom(100)
	if got, want := r.Pose().FOV, START_FOV+100*ZOOM_SPEED*ZOOM_FACTOR; math.Abs(got-want) > eps {
		t.Errorf("fov = %v, want %v", got, want)
	}
	r.Zoom(1e6)
	if got := r.Pose().FOV; got != MAX_FOV {
		t.Errorf("fov = %v, want %v", got, MAX_FOV)
	}
	r.Zoom(-1e6)
	if got := r.Pose().FOV; got != MIN_FOV {
		t.Errorf("fov = %v, want %v", got, MIN_FOV)
	}
}

func TestUpdateAccumulates(t *testing.T) {
	r := NewRig()
	r.SetKeys(Keys{Up: true})
	for i := 0; i < 3; i++ {
		r.Update()
	}
	want := START_POSITION.Add(mgl64.Vec3{0, 3 * MOVE_SPEED, 0})
	if got := r.Position(); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("position = %v, want %v", got, want)
	}
}

func TestLookAt(t *testing.T) {
	r := NewRig()
	target := mgl64.Vec3{5, -2, 7}
	const radius = 6371.0

	if err := r.LookAt(target, radius); err != nil {
		t.Fatalf("LookAt: %v", err)
	}

	pose := r.Pose()
	distance := radius * 1e-6 * FOCUS_DISTANCE
	if want := target.Add(mgl64.Vec3{0, distance, 0}); !pose.Position.ApproxEqualThreshold(want, eps) {
		t.Errorf("position = %v, want %v", pose.Position, want)
	}
	if want := mgl64.RadToDeg(2 * math.Atan2(1, FOCUS_DISTANCE)); math.Abs(pose.FOV-want) > eps {
		t.Errorf("fov = %v, want %v", pose.FOV, want)
	}
	if !pose.Direction.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-6) {
		t.Errorf("direction = %v, want straight down", pose.Direction)
	}

	t.Run("diverged target", func(t *testing.T) {
		before := r.Pose()
		err := r.LookAt(mgl64.Vec3{math.NaN(), 0, 0}, radius)
		if !errors.Is(err, ErrNonFiniteTarget) {
			t.Errorf("LookAt() = %v, want %v", err, ErrNonFiniteTarget)
		}
		if r.Pose() != before {
			t.Error("rig changed after a rejected LookAt")
		}
	})
}
