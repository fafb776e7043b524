// Package camera implements the free-fly viewer camera: held movement keys
// and relative pointer motion in, a per-frame position delta out.
package camera

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/celestial"
)

// Rig tuning
const (
	MOVE_SPEED       = 200.0 // scene units per frame per held key
	LOOK_SENSITIVITY = 0.003 // radians per pointer pixel
	ZOOM_SPEED       = 1.0
	ZOOM_FACTOR      = 0.05 // fov degrees per wheel unit at ZOOM_SPEED 1
	MIN_FOV          = 10.0
	MAX_FOV          = 100.0
	START_FOV        = 75.0
	FOCUS_DISTANCE   = 1.5 // LookAt distance in body radii
)

var (
	START_POSITION = mgl64.Vec3{0, 100, 10000}
	worldUp        = mgl64.Vec3{0, 1, 0}
)

// ErrNonFiniteTarget is returned by LookAt when the target position has
// diverged.
var ErrNonFiniteTarget = errors.New("camera: focus target is not finite")

// Keys holds the movement keys currently pressed.
type Keys struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Up      bool `json:"up"`
	Down    bool `json:"down"`
}

// Pose is what a renderer needs to place its camera.
type Pose struct {
	Position  mgl64.Vec3 `json:"position"`
	Direction mgl64.Vec3 `json:"direction"`
	Yaw       float64    `json:"yaw"`
	Pitch     float64    `json:"pitch"`
	FOV       float64    `json:"fov"`
}

// Rig is one viewer's camera. It is not safe for concurrent use.
type Rig struct {
	position mgl64.Vec3
	yaw      float64
	pitch    float64
	fov      float64
	keys     Keys
}

// NewRig returns a rig at the start position looking down -Z.
func NewRig() *Rig {
	return &Rig{
		position: START_POSITION,
		fov:      START_FOV,
	}
}

// SetKeys replaces the set of held keys.
func (r *Rig) SetKeys(k Keys) {
	r.keys = k
}

// Keys returns the held keys.
func (r *Rig) Keys() Keys {
	return r.keys
}

// PointerMove turns the camera by a relative pointer movement in pixels.
// Pitch is clamped so the view never flips over the poles.
func (r *Rig) PointerMove(dx, dy float64) {
	r.yaw -= dx * LOOK_SENSITIVITY
	r.pitch -= dy * LOOK_SENSITIVITY
	r.pitch = mgl64.Clamp(r.pitch, -math.Pi/2, math.Pi/2)
}

// Zoom narrows or widens the field of view by a wheel delta.
func (r *Rig) Zoom(deltaY float64) {
	r.fov += deltaY * ZOOM_SPEED * ZOOM_FACTOR
	r.fov = mgl64.Clamp(r.fov, MIN_FOV, MAX_FOV)
}

// Direction returns the unit view direction for the current yaw and pitch,
// yaw applied about world Y after pitch about the local X axis.
func (r *Rig) Direction() mgl64.Vec3 {
	q := mgl64.QuatRotate(r.yaw, worldUp).Mul(mgl64.QuatRotate(r.pitch, mgl64.Vec3{1, 0, 0}))
	return q.Rotate(mgl64.Vec3{0, 0, -1})
}

// MovementDelta is the displacement the held keys produce this frame:
// forward along the view direction, strafe along up × direction and
// vertical along world Y.
func (r *Rig) MovementDelta() mgl64.Vec3 {
	var move mgl64.Vec3
	if r.keys.Back {
		move[2] -= MOVE_SPEED
	}
	if r.keys.Forward {
		move[2] += MOVE_SPEED
	}
	if r.keys.Right {
		move[0] -= MOVE_SPEED
	}
	if r.keys.Left {
		move[0] += MOVE_SPEED
	}
	if r.keys.Up {
		move[1] += MOVE_SPEED
	}
	if r.keys.Down {
		move[1] -= MOVE_SPEED
	}

	dir := r.Direction()
	forward := dir.Normalize().Mul(move[2])
	right := normalizeOrZero(worldUp.Cross(dir)).Mul(move[0])
	vertical := mgl64.Vec3{0, move[1], 0}
	return forward.Add(right).Add(vertical)
}

// Update moves the camera by one frame of MovementDelta.
func (r *Rig) Update() {
	r.position = r.position.Add(r.MovementDelta())
}

// LookAt places the camera above target at FOCUS_DISTANCE radii, looking
// straight down, with the field of view set to frame the body. The radius
// is in catalog kilometres.
func (r *Rig) LookAt(target mgl64.Vec3, radius float64) error {
	for _, c := range target {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ErrNonFiniteTarget
		}
	}
	objectRadius := radius * celestial.DISPLAY_SCALE
	distance := objectRadius * FOCUS_DISTANCE

	r.fov = mgl64.RadToDeg(2 * math.Atan2(objectRadius, distance))
	r.position = target.Add(mgl64.Vec3{0, distance, 0})
	r.pitch = -math.Pi / 2
	return nil
}

// Position returns the camera position.
func (r *Rig) Position() mgl64.Vec3 {
	return r.position
}

// Pose returns a copy of the camera state for the renderer.
func (r *Rig) Pose() Pose {
	return Pose{
		Position:  r.position,
		Direction: r.Direction(),
		Yaw:       r.yaw,
		Pitch:     r.pitch,
		FOV:       r.fov,
	}
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}
