package celestial

import (
	"math"
)

// MeanAnomaly returns the mean anomaly after t seconds. It is not wrapped to
// [0, 2π); sin and cos downstream make the result periodic anyway.
func MeanAnomaly(period, t float64) float64 {
	return (2 * math.Pi / period) * t
}

// EccentricAnomaly solves Kepler's equation with exactly KEPLER_ITERATIONS
// fixed-point steps seeded with E = M. There is no convergence test, so
// bodies with e > 0.9 come out under-converged.
func EccentricAnomaly(M, e float64) float64 {
	E := M
	for i := 0; i < KEPLER_ITERATIONS; i++ {
		E = M + e*math.Sin(E)
	}
	return E
}

// TrueAnomaly converts an eccentric anomaly into the true anomaly.
func TrueAnomaly(E, e float64) float64 {
	return 2.0 * math.Atan2(
		math.Sqrt(1.0+e)*math.Sin(E/2.0),
		math.Sqrt(1.0-e)*math.Cos(E/2.0),
	)
}

// KeplerResidual reports how far E is from satisfying E - e·sin(E) = M.
func KeplerResidual(M, e, E float64) float64 {
	return math.Abs(E - e*math.Sin(E) - M)
}

// OrbitalPosition returns the body's position t seconds after perihelion in
// its flat orbital plane (XZ, Y = 0). Inclination is applied by the caller.
// Callers must supply a non-zero period.
func OrbitalPosition(body Body, t float64) Vector3 {
	checkPeriod(body)

	a := body.DisplayAxis()
	e := body.Eccentricity

	M := MeanAnomaly(body.OrbitalPeriod, t)
	E := EccentricAnomaly(M, e)
	v := TrueAnomaly(E, e)

	// Distance from the focus
	r := a * (1.0 - e*math.Cos(E))

	return Vector3{
		X: r * math.Cos(v),
		Y: 0,
		Z: r * math.Sin(v),
	}
}
