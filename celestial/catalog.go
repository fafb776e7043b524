package celestial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Catalog validation failures. ValidateCatalog wraps these with the
// offending body's name.
var (
	ErrEmptyCatalog        = errors.New("catalog has no bodies")
	ErrInvalidPeriod       = errors.New("orbital period must be positive")
	ErrInvalidEccentricity = errors.New("eccentricity must be in [0, 1)")
	ErrInvalidMass         = errors.New("mass must be positive")
	ErrDuplicateBody       = errors.New("duplicate body id")
)

// ValidateCatalog checks the invariants the solver and the perturbation
// sum rely on but do not check themselves. All problems are reported.
func ValidateCatalog(bodies []Body) error {
	if len(bodies) == 0 {
		return ErrEmptyCatalog
	}

	var errs []error
	seen := make(map[string]bool, len(bodies))
	for _, b := range bodies {
		if !(b.OrbitalPeriod > 0) || math.IsInf(b.OrbitalPeriod, 0) {
			errs = append(errs, fmt.Errorf("%s: %w (got %v)", b.Name, ErrInvalidPeriod, b.OrbitalPeriod))
		}
		if !(b.Eccentricity >= 0 && b.Eccentricity < 1) {
			errs = append(errs, fmt.Errorf("%s: %w (got %v)", b.Name, ErrInvalidEccentricity, b.Eccentricity))
		}
		if !(b.Mass > 0) {
			errs = append(errs, fmt.Errorf("%s: %w (got %v)", b.Name, ErrInvalidMass, b.Mass))
		}
		if seen[b.ID] {
			errs = append(errs, fmt.Errorf("%s: %w %q", b.Name, ErrDuplicateBody, b.ID))
		}
		seen[b.ID] = true
	}
	return errors.Join(errs...)
}

// LoadCatalog reads a JSON array of bodies from path. Missing IDs are
// derived from names and missing colours default to white.
func LoadCatalog(path string) ([]Body, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var bodies []Body
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	for i := range bodies {
		if bodies[i].ID == "" {
			bodies[i].ID = FormatBodyID(bodies[i].Name)
		}
		if bodies[i].Kind == "" {
			bodies[i].Kind = KindPlanet
		}
		if bodies[i].Color == "" {
			bodies[i].Color = "#ffffff"
		}
	}

	if err := ValidateCatalog(bodies); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return bodies, nil
}
