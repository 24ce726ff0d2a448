// Package buffer implements the cell grid the rendering engine composites
// into: a dense width*height array of character cells with parallel color
// and attribute storage, plus the drawing primitives (clear, set, fill,
// text runs, buffer-into-buffer composition) and the alpha blending model.
//
// Every operation is bounds-safe. Reads outside the grid report absence and
// writes outside the grid are dropped, so drawing code never needs its own
// clipping.
package buffer

import (
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/errors"
)

// Text attribute bits. Independent flags, combinable with bitwise or.
const (
	AttrBold      uint8 = 1 << 0
	AttrDim       uint8 = 1 << 1
	AttrItalic    uint8 = 1 << 2
	AttrUnderline uint8 = 1 << 3
	AttrBlink     uint8 = 1 << 4
	AttrReverse   uint8 = 1 << 5
	AttrStrike    uint8 = 1 << 6
	AttrHidden    uint8 = 1 << 7
)

// WidthMethod selects how text width is measured when drawing runs.
type WidthMethod uint8

const (
	// WidthWCWidth measures clusters with wcwidth semantics.
	WidthWCWidth WidthMethod = iota
	// WidthUnicode measures clusters per the Unicode segmentation rules.
	WidthUnicode
)

// Cell is the copy-out view of one character position.
type Cell struct {
	Char       rune
	Foreground color.RGBA
	Background color.RGBA
	Attributes uint8
}

// DefaultForeground is the foreground color cells take on Clear.
var DefaultForeground = color.White

// Buffer is a 2D grid of character cells. Storage is struct-of-arrays so the
// raw per-cell planes can be handed to an accelerated backend without
// conversion: characters, foreground colors, background colors, and
// attributes live in parallel slices indexed y*width+x.
type Buffer struct {
	width  int
	height int

	chars []rune
	fg    []color.RGBA
	bg    []color.RGBA
	attrs []uint8

	// respectAlpha is fixed at creation. When composited into another
	// buffer, a respect-alpha buffer blends per cell; otherwise cells are
	// copied verbatim.
	respectAlpha bool

	widthMethod WidthMethod
}

// New creates a buffer of the given dimensions. Compositing this buffer into
// another copies cells verbatim (alpha ignored).
func New(w, h int) (*Buffer, error) {
	return newBuffer(w, h, false)
}

// NewRespectAlpha creates a buffer whose per-cell alpha is honored when it
// is composited into another buffer.
func NewRespectAlpha(w, h int) (*Buffer, error) {
	return newBuffer(w, h, true)
}

func newBuffer(w, h int, respectAlpha bool) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeBufferSize, "buffer dimensions must be positive").
			WithContext("width", w).
			WithContext("height", h)
	}
	b := &Buffer{
		width:        w,
		height:       h,
		chars:        make([]rune, w*h),
		fg:           make([]color.RGBA, w*h),
		bg:           make([]color.RGBA, w*h),
		attrs:        make([]uint8, w*h),
		respectAlpha: respectAlpha,
	}
	b.Clear(color.Transparent)
	return b, nil
}

// Width returns the buffer width in cells.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in cells.
func (b *Buffer) Height() int { return b.height }

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// RespectsAlpha reports whether compositing honors this buffer's alpha.
func (b *Buffer) RespectsAlpha() bool { return b.respectAlpha }

// WidthMethod returns the text measuring method used by DrawText.
func (b *Buffer) WidthMethod() WidthMethod { return b.widthMethod }

// SetWidthMethod changes how DrawText measures cluster widths.
func (b *Buffer) SetWidthMethod(m WidthMethod) { b.widthMethod = m }

// Resize reallocates backing storage for the new dimensions. Contents are
// not preserved; callers redraw after a resize.
func (b *Buffer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeBufferSize, "buffer dimensions must be positive").
			WithContext("width", w).
			WithContext("height", h)
	}
	if w == b.width && h == b.height {
		return nil
	}
	b.width = w
	b.height = h
	b.chars = make([]rune, w*h)
	b.fg = make([]color.RGBA, w*h)
	b.bg = make([]color.RGBA, w*h)
	b.attrs = make([]uint8, w*h)
	b.Clear(color.Transparent)
	return nil
}

// Clear sets every cell to a space with the default foreground, zero
// attributes, and the given background.
func (b *Buffer) Clear(bg color.RGBA) {
	for i := range b.chars {
		b.chars[i] = ' '
		b.fg[i] = DefaultForeground
		b.bg[i] = bg
		b.attrs[i] = 0
	}
}

// Get returns a copy of the cell at (x, y), or ok=false out of bounds.
func (b *Buffer) Get(x, y int) (Cell, bool) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{}, false
	}
	i := y*b.width + x
	return Cell{
		Char:       b.chars[i],
		Foreground: b.fg[i],
		Background: b.bg[i],
		Attributes: b.attrs[i],
	}, true
}

// Set unconditionally overwrites the cell at (x, y). No-op out of bounds.
func (b *Buffer) Set(x, y int, char rune, fg, bg color.RGBA, attrs uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := y*b.width + x
	b.chars[i] = char
	b.fg[i] = fg
	b.bg[i] = bg
	b.attrs[i] = attrs
}

// SetCell overwrites the cell at (x, y) from a Cell value.
func (b *Buffer) SetCell(x, y int, c Cell) {
	b.Set(x, y, c.Char, c.Foreground, c.Background, c.Attributes)
}

// Chars exposes the raw character plane. Shared with the accelerated
// backend contract; treat as read-only outside the engine.
func (b *Buffer) Chars() []rune { return b.chars }

// Foreground exposes the raw foreground color plane.
func (b *Buffer) Foreground() []color.RGBA { return b.fg }

// Background exposes the raw background color plane.
func (b *Buffer) Background() []color.RGBA { return b.bg }

// Attributes exposes the raw attribute plane.
func (b *Buffer) Attributes() []uint8 { return b.attrs }
