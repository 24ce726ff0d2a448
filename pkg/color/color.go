// Package color provides the RGBA color value type used throughout the
// rendering engine. Components are float32 values between 0.0 and 1.0;
// an alpha below 1.0 marks the color as translucent for the compositor.
package color

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/okanek/tessera/pkg/errors"
)

// RGBA represents a color with red, green, blue, and alpha components.
type RGBA struct {
	R, G, B, A float32
}

// NewRGBA creates a new RGBA color.
func NewRGBA(r, g, b, a float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// NewRGB creates a new RGBA color with alpha set to 1.0 (fully opaque).
func NewRGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// FromInts creates a color from 8-bit channel values.
func FromInts(r, g, b, a uint8) RGBA {
	return RGBA{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// FromHex parses "#RGB" or "#RRGGBB" into an opaque color.
func FromHex(s string) (RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid hex color").
			WithContext("value", s)
	}
	return RGBA{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1.0}, nil
}

// FromHexUint unpacks 0xRRGGBB into an opaque color.
func FromHexUint(v uint32) RGBA {
	return FromInts(uint8(v>>16), uint8(v>>8), uint8(v), 255)
}

// Hex renders the color as "#rrggbb". Alpha is not encoded.
func (c RGBA) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

// WithAlpha returns a copy of the color with a different alpha.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// HasTransparency reports whether the color participates in alpha blending.
func (c RGBA) HasTransparency() bool {
	return c.A < 1.0
}

// Lerp linearly interpolates every component toward other by t in [0,1].
func (c RGBA) Lerp(other RGBA, t float32) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Lighten raises the HSL lightness by amount, clamped to white.
// Alpha is preserved. Intended for themes and overlays, not the blend path.
func (c RGBA) Lighten(amount float32) RGBA {
	return c.adjustLightness(float64(amount))
}

// Darken lowers the HSL lightness by amount, clamped to black.
func (c RGBA) Darken(amount float32) RGBA {
	return c.adjustLightness(-float64(amount))
}

func (c RGBA) adjustLightness(delta float64) RGBA {
	h, s, l := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Hsl()
	l = math.Max(0, math.Min(1, l+delta))
	adjusted := colorful.Hsl(h, s, l).Clamped()
	return RGBA{R: float32(adjusted.R), G: float32(adjusted.G), B: float32(adjusted.B), A: c.A}
}

// NearlyEqual compares two colors component-wise within epsilon.
func (c RGBA) NearlyEqual(other RGBA, epsilon float32) bool {
	return abs(c.R-other.R) <= epsilon &&
		abs(c.G-other.G) <= epsilon &&
		abs(c.B-other.B) <= epsilon &&
		abs(c.A-other.A) <= epsilon
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Common colors
var (
	Black       = NewRGB(0, 0, 0)
	White       = NewRGB(1, 1, 1)
	Red         = NewRGB(1, 0, 0)
	Green       = NewRGB(0, 1, 0)
	Blue        = NewRGB(0, 0, 1)
	Yellow      = NewRGB(1, 1, 0)
	Cyan        = NewRGB(0, 1, 1)
	Magenta     = NewRGB(1, 0, 1)
	Gray        = NewRGB(0.5, 0.5, 0.5)
	Transparent = NewRGBA(0, 0, 0, 0)

	BrightBlack   = NewRGB(0.33, 0.33, 0.33)
	BrightRed     = NewRGB(1, 0.33, 0.33)
	BrightGreen   = NewRGB(0.33, 1, 0.33)
	BrightYellow  = NewRGB(1, 1, 0.33)
	BrightBlue    = NewRGB(0.33, 0.33, 1)
	BrightMagenta = NewRGB(1, 0.33, 1)
	BrightCyan    = NewRGB(0.33, 1, 1)
	BrightWhite   = NewRGB(1, 1, 1)
)
