package celestial

// PairForce returns the pseudo-force that b exerts on a. The separation is
// multiplied by AU even though positions are already scene units; the
// resulting force magnitudes depend on that.
func PairForce(a, b PointMass) Vector3 {
	delta := b.Position.Subtract(a.Position)
	distance := delta.Magnitude() * AU
	force := GRAVITATIONAL_CONSTANT * a.Mass * b.Mass / (distance * distance)
	return delta.Normalize().Scale(force)
}

// Accelerations sums the pairwise pseudo-accelerations for every body.
// The result is index-aligned with points. Cost is O(n²).
func Accelerations(points []PointMass) []Vector3 {
	accelerations := make([]Vector3, len(points))
	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			checkSeparated(points[i].Position, points[j].Position)
			force := PairForce(points[i], points[j])
			accelerations[i] = accelerations[i].Add(force.Scale(1 / points[i].Mass))
		}
	}
	return accelerations
}
