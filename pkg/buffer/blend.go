package buffer

import (
	"math"

	"github.com/okanek/tessera/pkg/color"
)

// perceptualAlpha remaps a raw background alpha for compositing. Linear
// blending reads as too transparent at high opacity when text sits under
// text, so near-opaque values are pushed toward fully opaque while low and
// mid values keep a gentler falloff. The constants are load-bearing; changing
// them changes every rendered frame.
func perceptualAlpha(a float32) float32 {
	if a > 0.8 {
		t := (a - 0.8) * 5
		return 0.8 + float32(math.Pow(float64(t), 0.2))*0.2
	}
	return float32(math.Pow(float64(a), 0.9))
}

// SetBlended writes a cell through the alpha compositing model. An opaque
// background behaves exactly like Set. A translucent background is blended
// over the destination with the perceptual curve; the destination keeps its
// own background alpha (alpha never accumulates across writes).
//
// Writing a space over a cell that holds a glyph preserves the glyph and its
// attributes and only tints the colors, so a translucent fill laid over text
// shades the text instead of erasing it.
func (b *Buffer) SetBlended(x, y int, char rune, fg, bg color.RGBA, attrs uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	if !bg.HasTransparency() {
		b.Set(x, y, char, fg, bg, attrs)
		return
	}

	i := y*b.width + x
	destChar := b.chars[i]
	destFg := b.fg[i]
	destBg := b.bg[i]

	newBg := destBg.Lerp(bg, perceptualAlpha(bg.A))
	newBg.A = destBg.A

	if char == ' ' && destChar != ' ' {
		// Tint the preserved glyph with the incoming background. The raw
		// alpha, not the perceptual one, drives the foreground shift.
		newFg := destFg.Lerp(bg, bg.A)
		newFg.A = destFg.A
		b.fg[i] = newFg
		b.bg[i] = newBg
		return
	}

	newFg := fg
	if fg.HasTransparency() {
		newFg = newBg.Lerp(fg, fg.A)
		newFg.A = 1.0
	}
	b.chars[i] = char
	b.fg[i] = newFg
	b.bg[i] = newBg
	b.attrs[i] = attrs
}
