package celestial

import (
	"strings"
	"unicode"
)

// Comet radii in the table are given in multiples of this many kilometres.
const cometRadiusUnit = 10

// Sun returns the central star. It sits at the origin, is drawn and lit by
// the renderer, and takes no part in the orbit or perturbation model.
func Sun() Body {
	return Body{
		ID:      "sun",
		Name:    "Sun",
		Kind:    KindStar,
		Radius:  695700.0,
		Mass:    1.989e30,
		Texture: "textures/sun.jpg",
		Color:   "#ffffff",
	}
}

// SolarSystemBodies returns the fixed table of orbiting bodies in display
// order. Every call returns a fresh slice.
//
// The table keeps the values it was tuned with: Uranus is not display
// scaled and the Moon's axis is a raw kilometre figure around the Sun.
func SolarSystemBodies() []Body {
	bodies := []Body{
		// PLANETS
		{
			Name:          "Mercury",
			Kind:          KindPlanet,
			Radius:        2439.7,
			Mass:          3.3011e23,
			SemiMajorAxis: 0.387 * AU * DISPLAY_SCALE,
			Eccentricity:  0.2056,
			Inclination:   7.005,
			AxialTilt:     0.034,
			OrbitalPeriod: 88 * SECONDS_PER_DAY,
			Texture:       "textures/mercury.jpg",
		},
		{
			Name:          "Venus",
			Kind:          KindPlanet,
			Radius:        6051.8,
			Mass:          4.8675e24,
			SemiMajorAxis: 0.723 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0067,
			Inclination:   3.394,
			AxialTilt:     177.4,
			OrbitalPeriod: 224.7 * SECONDS_PER_DAY,
			Texture:       "textures/venus.jpg",
		},
		{
			Name:          "Earth",
			Kind:          KindPlanet,
			Radius:        6371,
			Mass:          5.972e24,
			SemiMajorAxis: 1 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0167,
			Inclination:   0,
			AxialTilt:     23.44,
			OrbitalPeriod: 365.25 * SECONDS_PER_DAY,
			Texture:       "textures/earth.jpg",
		},
		{
			Name:          "Moon",
			Kind:          KindMoon,
			Radius:        1737.1,
			Mass:          7.342e22,
			SemiMajorAxis: 384400,
			Eccentricity:  0.0549,
			Inclination:   5.145,
			AxialTilt:     6.68,
			OrbitalPeriod: 27.3 * SECONDS_PER_DAY,
			Texture:       "textures/moon.jpg",
		},
		{
			Name:          "Mars",
			Kind:          KindPlanet,
			Radius:        3389.5,
			Mass:          6.4171e23,
			SemiMajorAxis: 1.524 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0934,
			Inclination:   1.85,
			AxialTilt:     25.19,
			OrbitalPeriod: 687 * SECONDS_PER_DAY,
			Texture:       "textures/mars.jpg",
		},
		{
			Name:          "Jupiter",
			Kind:          KindPlanet,
			Radius:        69911,
			Mass:          1.8982e27,
			SemiMajorAxis: 5.203 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0489,
			Inclination:   1.305,
			AxialTilt:     3.13,
			OrbitalPeriod: 4333 * SECONDS_PER_DAY,
			Texture:       "textures/jupiter.jpg",
			Rings:         &Rings{InnerRadius: 70000, OuterRadius: 120000, Color: "#cccccc"},
		},
		{
			Name:          "Saturn",
			Kind:          KindPlanet,
			Radius:        58232,
			Mass:          5.6834e26,
			SemiMajorAxis: 9.537 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0565,
			Inclination:   2.485,
			AxialTilt:     26.73,
			OrbitalPeriod: 10759 * SECONDS_PER_DAY,
			Texture:       "textures/saturn.jpg",
			Rings:         &Rings{InnerRadius: 60000, OuterRadius: 140000, Color: "#ffffaa"},
		},
		{
			Name:          "Uranus",
			Kind:          KindPlanet,
			Radius:        25362,
			Mass:          8.6810e25,
			SemiMajorAxis: 19.191 * AU,
			Eccentricity:  0.046,
			Inclination:   0.772,
			AxialTilt:     97.77,
			OrbitalPeriod: 30687 * SECONDS_PER_DAY,
			Texture:       "textures/uranus.jpg",
		},
		{
			Name:          "Neptune",
			Kind:          KindPlanet,
			Radius:        24622,
			Mass:          1.02413e26,
			SemiMajorAxis: 30.069 * AU * DISPLAY_SCALE,
			Eccentricity:  0.0086,
			Inclination:   1.769,
			AxialTilt:     28.32,
			OrbitalPeriod: 60190 * SECONDS_PER_DAY,
			Texture:       "textures/neptune.jpg",
		},

		// COMETS
		comet("Halley’s Comet", 11, 2.2e14, 17.8, 0.967, 162.26, 75*365.25),
		comet("Comet Hale-Bopp", 30, 4.2e14, 3750, 0.995, 5.25, 2533),
		comet("Comet NEOWISE", 10, 1.0e14, 5800, 0.999, 23.5, 6880),
		comet("Comet Lovejoy", 20, 3.6e14, 5000, 0.997, 40.1, 6280),
		comet("Comet Hyakutake", 30, 1.4e14, 12000, 0.999, 30.1, 1800),
		comet("Comet 67P/Churyumov–Gerasimenko", 4, 1.0e14, 3258, 0.810, 7.04, 6580),
		comet("Comet Tempel 1", 7, 1.0e14, 1335, 0.915, 42.6, 5900),
		comet("Comet 2P/Encke", 4, 1.0e14, 3050, 0.847, 7.5, 1200),
		comet("Comet 3D/Borisov", 6, 5.0e13, 3350, 0.954, 53.8, 2400),
		comet("Comet C/2013 US10 (Catalina)", 8, 1.2e14, 4200, 0.994, 34.5, 1300),
		comet("Comet C/2020 F3 (NEOWISE)", 10, 1.5e14, 5800, 0.999, 36.8, 6880),
		comet("Comet 41P/Tuttle–Giacobini–Kresák", 5, 5.0e13, 5000, 0.775, 21.3, 2800),
		comet("Comet 8P/Tuttle", 6, 4.0e13, 8500, 0.81, 13.0, 1350),
	}

	for i := range bodies {
		bodies[i].ID = FormatBodyID(bodies[i].Name)
		if bodies[i].Color == "" {
			bodies[i].Color = "#ffffff"
		}
	}
	return bodies
}

// comet builds a comet entry; axisAU is in astronomical units and
// periodDays in days.
func comet(name string, radiusUnits, mass, axisAU, e, inclination, periodDays float64) Body {
	return Body{
		Name:          name,
		Kind:          KindComet,
		Radius:        radiusUnits * cometRadiusUnit,
		Mass:          mass,
		SemiMajorAxis: axisAU * AU * DISPLAY_SCALE,
		Eccentricity:  e,
		Inclination:   inclination,
		OrbitalPeriod: periodDays * SECONDS_PER_DAY,
		Texture:       "textures/comet.jpg",
	}
}

// FormatBodyID turns a display name into a lowercase, hyphenated identifier
// usable in URL paths. Runs of anything that is not a letter or digit
// collapse into a single hyphen.
func FormatBodyID(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
