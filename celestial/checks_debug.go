//go:build debugchecks
// +build debugchecks

package celestial

import "fmt"

// Debug builds stop at the first zero period or coincident pair instead of
// letting NaN and Inf reach the renderer.

func checkPeriod(body Body) {
	if body.OrbitalPeriod == 0 {
		panic(fmt.Sprintf("celestial: %s has a zero orbital period", body.Name))
	}
}

func checkSeparated(a, b Vector3) {
	if a == b {
		panic(fmt.Sprintf("celestial: coincident bodies at %+v", a))
	}
}
