//go:build !debugchecks
// +build !debugchecks

package celestial

// Release builds leave zero periods and coincident bodies unchecked; the
// resulting non-finite values flow through to the caller.

func checkPeriod(Body) {}

func checkSeparated(_, _ Vector3) {}
