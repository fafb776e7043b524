package main

import (
	"github.com/lucasb-eyer/go-colorful"

	"orrery/celestial"
)

// Trails are drawn this far from the body colour toward black.
const TRAIL_FADE = 0.55

var kindHues = map[celestial.BodyKind]float64{
	celestial.KindStar:   50,
	celestial.KindPlanet: 210,
	celestial.KindMoon:   0,
	celestial.KindComet:  170,
}

// BodyColor is the body's own colour. Catalog entries without a usable
// colour get one from their kind, and plain white bodies are tinted by kind
// so trails can be told apart.
func BodyColor(b celestial.Body) colorful.Color {
	c, err := colorful.Hex(b.Color)
	if err != nil || isWhite(c) {
		return KindColor(b.Kind)
	}
	return c
}

// KindColor is the fallback palette for a body kind.
func KindColor(kind celestial.BodyKind) colorful.Color {
	hue, ok := kindHues[kind]
	if !ok {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	chroma := 0.6
	if kind == celestial.KindMoon {
		chroma = 0
	}
	return colorful.Hcl(hue, chroma, 0.85).Clamped()
}

// TrailColor is the hex colour for a body's trajectory line.
func TrailColor(b celestial.Body) string {
	black := colorful.Color{}
	return BodyColor(b).BlendLab(black, TRAIL_FADE).Clamped().Hex()
}

func isWhite(c colorful.Color) bool {
	return c.R >= 0.999 && c.G >= 0.999 && c.B >= 0.999
}
