package buffer

import (
	runewidth "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/okanek/tessera/pkg/color"
)

// TextSelection marks a highlighted sub-range of a text run handed to
// DrawText. Start and End are half-open grapheme offsets into the run. Nil
// color overrides fall back to inverse video (foreground and background
// swapped).
type TextSelection struct {
	Start      int
	End        int
	Foreground *color.RGBA
	Background *color.RGBA
}

// DrawText writes a run of text starting at (x, y), one grapheme cluster at
// a time. Wide clusters occupy their measured width; the buffer's width
// method decides the measurement. A nil bg inherits each destination cell's
// background (opaque black when the cell is outside the grid), so plain text
// lands on whatever is already drawn. A selection splits the run into
// unselected and selected segments with their own colors.
func (b *Buffer) DrawText(text string, x, y int, fg color.RGBA, bg *color.RGBA, attrs uint8, sel *TextSelection) {
	if y < 0 || y >= b.height {
		return
	}

	col := x
	index := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if col >= b.width {
			break
		}
		cluster := g.Str()
		runes := g.Runes()
		w := b.clusterWidth(g, cluster)

		useFg := fg
		var useBg color.RGBA
		explicitBg := bg != nil
		if explicitBg {
			useBg = *bg
		} else if cell, ok := b.Get(col, y); ok {
			useBg = cell.Background
		} else {
			useBg = color.Black
		}

		if sel != nil && index >= sel.Start && index < sel.End {
			selFg, selBg := useBg, useFg
			if sel.Foreground != nil {
				selFg = *sel.Foreground
			}
			if sel.Background != nil {
				selBg = *sel.Background
			}
			useFg, useBg = selFg, selBg
		}

		if explicitBg && useBg.HasTransparency() {
			b.SetBlended(col, y, runes[0], useFg, useBg, attrs)
		} else {
			b.Set(col, y, runes[0], useFg, useBg, attrs)
		}
		// Continuation cells under a wide cluster carry the style but no
		// glyph, so stale characters never peek out from under it.
		for k := 1; k < w; k++ {
			b.Set(col+k, y, ' ', useFg, useBg, attrs)
		}

		col += w
		index++
	}
}

func (b *Buffer) clusterWidth(g *uniseg.Graphemes, cluster string) int {
	var w int
	switch b.widthMethod {
	case WidthUnicode:
		w = g.Width()
	default:
		w = runewidth.StringWidth(cluster)
	}
	if w < 1 {
		w = 1
	}
	return w
}

// MeasureText returns the on-screen width of text under a width method.
func MeasureText(text string, m WidthMethod) int {
	if m == WidthUnicode {
		return uniseg.StringWidth(text)
	}
	return runewidth.StringWidth(text)
}
