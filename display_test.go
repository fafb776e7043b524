package main

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"orrery/celestial"
)

func TestBodyColor(t *testing.T) {
	tests := []struct {
		name string
		body celestial.Body
		want colorful.Color
	}{
		{"explicit colour", celestial.Body{Kind: celestial.KindPlanet, Color: "#ff8800"}, mustHex(t, "#ff8800")},
		{"white falls back to kind", celestial.Body{Kind: celestial.KindComet, Color: "#ffffff"}, KindColor(celestial.KindComet)},
		{"unparseable falls back", celestial.Body{Kind: celestial.KindPlanet, Color: "orange"}, KindColor(celestial.KindPlanet)},
		{"empty falls back", celestial.Body{Kind: celestial.KindMoon}, KindColor(celestial.KindMoon)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BodyColor(tt.body); got.Hex() != tt.want.Hex() {
				t.Errorf("BodyColor() = %s, want %s", got.Hex(), tt.want.Hex())
			}
		})
	}
}

func TestKindColorsDistinct(t *testing.T) {
	seen := map[string]celestial.BodyKind{}
	for _, kind := range []celestial.BodyKind{celestial.KindStar, celestial.KindPlanet, celestial.KindMoon, celestial.KindComet} {
		c := KindColor(kind)
		if !c.IsValid() {
			t.Errorf("%s colour %v out of gamut", kind, c)
		}
		if other, dup := seen[c.Hex()]; dup {
			t.Errorf("%s and %s share colour %s", kind, other, c.Hex())
		}
		seen[c.Hex()] = kind
	}
	if got := KindColor("asteroid").Hex(); got != "#ffffff" {
		t.Errorf("unknown kind colour = %s, want white", got)
	}
}

func TestTrailColorIsDarker(t *testing.T) {
	for _, b := range celestial.SolarSystemBodies() {
		body := BodyColor(b)
		trail, err := colorful.Hex(TrailColor(b))
		if err != nil {
			t.Fatalf("%s: trail colour %q does not parse: %v", b.ID, TrailColor(b), err)
		}
		_, _, bodyL := body.Hcl()
		_, _, trailL := trail.Hcl()
		if trailL >= bodyL {
			t.Errorf("%s: trail lightness %.3f not below body %.3f", b.ID, trailL, bodyL)
		}
	}
}

func mustHex(t *testing.T, s string) colorful.Color {
	t.Helper()
	c, err := colorful.Hex(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
