package backend

import (
	"github.com/muesli/termenv"

	"github.com/okanek/tessera/pkg/color"
)

// ColorMode is the color depth a terminal can actually display.
type ColorMode uint8

const (
	ColorMono ColorMode = iota
	Color16
	Color256
	ColorTrue
)

// String returns the mode's display name.
func (m ColorMode) String() string {
	switch m {
	case Color16:
		return "ansi"
	case Color256:
		return "256"
	case ColorTrue:
		return "truecolor"
	default:
		return "mono"
	}
}

// Capabilities describes what the attached terminal supports.
type Capabilities struct {
	ColorMode       ColorMode
	Mouse           bool
	AlternateScreen bool
}

// DetectColorMode probes the environment for the terminal's color depth.
// NO_COLOR and CLICOLOR are honored.
func DetectColorMode() ColorMode {
	switch termenv.EnvColorProfile() {
	case termenv.TrueColor:
		return ColorTrue
	case termenv.ANSI256:
		return Color256
	case termenv.ANSI:
		return Color16
	default:
		return ColorMono
	}
}

// Detect probes the environment for the full capability set. Mouse and
// alternate screen reporting cannot be queried portably, so any real
// terminal (anything beyond a dumb pipe) is assumed to have them.
func Detect() Capabilities {
	mode := DetectColorMode()
	interactive := termenv.EnvColorProfile() != termenv.Ascii
	return Capabilities{
		ColorMode:       mode,
		Mouse:           interactive,
		AlternateScreen: interactive,
	}
}

// PaletteIndex quantizes c to the nearest entry of the 16- or 256-color
// palette. ok is false for modes without a palette.
func PaletteIndex(c color.RGBA, mode ColorMode) (int, bool) {
	var profile termenv.Profile
	switch mode {
	case Color16:
		profile = termenv.ANSI
	case Color256:
		profile = termenv.ANSI256
	default:
		return 0, false
	}
	switch v := profile.Convert(termenv.RGBColor(c.Hex())).(type) {
	case termenv.ANSIColor:
		return int(v), true
	case termenv.ANSI256Color:
		return int(v), true
	default:
		return 0, false
	}
}
