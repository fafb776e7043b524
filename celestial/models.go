// Package celestial holds the orbital model of the simulated solar system:
// the body catalog, the Kepler orbit solver, the pairwise perturbation sum
// and the frame updater that combines them.
package celestial

import (
	"math"
	"strconv"
)

// Astronomical and display constants
const (
	AU                     = 14959780.7  // Astronomical unit as used by the body table (km)
	GRAVITATIONAL_CONSTANT = 6.67430e-11 // m^3 kg^-1 s^-2
	SECONDS_PER_DAY        = 86400.0     // Seconds in a day
	DISPLAY_SCALE          = 1e-6        // Catalog distance to scene units
	KEPLER_ITERATIONS      = 10          // Fixed eccentric anomaly iterations, no convergence test

	// Applied to every pseudo-acceleration regardless of the real frame delta.
	TIME_STEP_SCALE = 0.5 * SECONDS_PER_DAY * SECONDS_PER_DAY
)

// BodyKind classifies a catalog entry.
type BodyKind string

const (
	KindStar   BodyKind = "star"
	KindPlanet BodyKind = "planet"
	KindMoon   BodyKind = "moon"
	KindComet  BodyKind = "comet"
)

// Rings is display metadata for ringed planets.
type Rings struct {
	InnerRadius float64 `json:"inner_radius"` // km
	OuterRadius float64 `json:"outer_radius"` // km
	Color       string  `json:"color"`
}

// Body is one immutable catalog entry. Orbital elements are never modified
// after the catalog is built; everything that changes per frame lives in
// BodyState.
type Body struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Kind BodyKind `json:"kind"`

	Radius float64 `json:"radius"` // km
	Mass   float64 `json:"mass"`   // kg

	// SemiMajorAxis is the catalog value. The solver multiplies it by
	// DISPLAY_SCALE once more, see DisplayAxis.
	SemiMajorAxis float64 `json:"semi_major_axis"`
	Eccentricity  float64 `json:"eccentricity"`
	Inclination   float64 `json:"inclination"`    // degrees
	AxialTilt     float64 `json:"axial_tilt"`     // degrees, display only
	OrbitalPeriod float64 `json:"orbital_period"` // seconds

	Texture string `json:"texture,omitempty"`
	Color   string `json:"color,omitempty"`
	Rings   *Rings `json:"rings,omitempty"`
}

// DisplayAxis returns the semi-major axis in scene units.
func (b Body) DisplayAxis() float64 {
	return b.SemiMajorAxis * DISPLAY_SCALE
}

// InclinationRadians returns the orbital inclination in radians.
func (b Body) InclinationRadians() float64 {
	return degToRad(b.Inclination)
}

// PointMass is what the perturbation sum needs to know about a body.
type PointMass struct {
	Mass     float64
	Position Vector3
}

// Convert degrees to radians
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Vector3 represents a 3D vector
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Subtract returns the difference of two vectors
func (v Vector3) Subtract(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale returns the vector multiplied by a scalar
func (v Vector3) Scale(factor float64) Vector3 {
	return Vector3{
		X: v.X * factor,
		Y: v.Y * factor,
		Z: v.Z * factor,
	}
}

// Magnitude returns the magnitude (length) of the vector
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector, or the zero vector for a zero input.
func (v Vector3) Normalize() Vector3 {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector3{}
	}
	return v.Scale(1 / mag)
}

// RotateX rotates the vector about the +X axis by angle radians.
func (v Vector3) RotateX(angle float64) Vector3 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Vector3{
		X: v.X,
		Y: v.Y*cos - v.Z*sin,
		Z: v.Y*sin + v.Z*cos,
	}
}

// IsFinite reports whether every component is a finite number.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// MarshalJSON writes non-finite components as null so a diverged body
// cannot break encoding of a whole frame.
func (v Vector3) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, `{"x":`...)
	buf = appendComponent(buf, v.X)
	buf = append(buf, `,"y":`...)
	buf = appendComponent(buf, v.Y)
	buf = append(buf, `,"z":`...)
	buf = appendComponent(buf, v.Z)
	return append(buf, '}'), nil
}

func appendComponent(buf []byte, c float64) []byte {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, c, 'g', -1, 64)
}
