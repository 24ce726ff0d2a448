package scene

import (
	"time"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
)

// Group is a pure container: it draws nothing itself and exists to place
// and stack a subtree as one unit.
type Group struct {
	Base
}

// NewGroup creates and registers an empty container node.
func NewGroup(reg *Registry, id string) *Group {
	g := &Group{Base: NewBase(id)}
	reg.Register(g)
	return g
}

// Box is a filled rectangle with an optional border and title.
type Box struct {
	Base

	bg          color.RGBA
	border      bool
	borderColor color.RGBA
	opts        buffer.BoxOptions
}

// NewBox creates and registers a box node. It starts transparent,
// borderless, and zero-sized.
func NewBox(reg *Registry, id string) *Box {
	b := &Box{
		Base:        NewBase(id),
		bg:          color.Transparent,
		borderColor: color.White,
	}
	b.opts.Sides = buffer.AllBorderSides()
	reg.Register(b)
	return b
}

// Background returns the fill color.
func (b *Box) Background() color.RGBA { return b.bg }

// SetBackground sets the fill color. Translucent fills blend over
// whatever is already drawn underneath the box.
func (b *Box) SetBackground(bg color.RGBA) {
	if b.bg == bg {
		return
	}
	b.bg = bg
	b.MarkDirty()
}

// SetBorder toggles the border.
func (b *Box) SetBorder(enabled bool) {
	if b.border == enabled {
		return
	}
	b.border = enabled
	b.MarkDirty()
}

// SetBorderColor sets the border foreground.
func (b *Box) SetBorderColor(c color.RGBA) {
	b.borderColor = c
	b.MarkDirty()
}

// SetBorderChars sets the glyph set used for border edges and corners.
func (b *Box) SetBorderChars(chars [8]rune) {
	b.opts.BorderChars = chars
	b.MarkDirty()
}

// SetBorderSides chooses which edges are drawn.
func (b *Box) SetBorderSides(sides buffer.BorderSides) {
	b.opts.Sides = sides
	b.MarkDirty()
}

// SetTitle sets the text drawn into the top border.
func (b *Box) SetTitle(title string, align buffer.TextAlignment) {
	b.opts.Title = title
	b.opts.TitleAlignment = align
	b.MarkDirty()
}

// Draw fills the box's bounds, with the border on top when enabled.
func (b *Box) Draw(buf *buffer.Buffer, dt time.Duration) {
	r := b.Bounds()
	if r.Empty() {
		return
	}
	if b.border {
		opts := b.opts
		opts.Fill = true
		buf.DrawBox(r, opts, b.borderColor, b.bg)
		return
	}
	if b.bg.A == 0 {
		return
	}
	buf.FillRect(r.X, r.Y, r.Width, r.Height, b.bg)
}

// FrameBuffer is a node backed by its own cell buffer. Callers draw into
// the buffer directly; each frame the node composites it at the node's
// screen position. Created respect-alpha, the buffer blends into the
// scene instead of copying verbatim.
type FrameBuffer struct {
	Base

	fb *buffer.Buffer
}

// NewFrameBuffer creates and registers a frame buffer node of the given
// size.
func NewFrameBuffer(reg *Registry, id string, w, h int, respectAlpha bool) (*FrameBuffer, error) {
	var fb *buffer.Buffer
	var err error
	if respectAlpha {
		fb, err = buffer.NewRespectAlpha(w, h)
	} else {
		fb, err = buffer.New(w, h)
	}
	if err != nil {
		return nil, err
	}
	n := &FrameBuffer{Base: NewBase(id), fb: fb}
	n.Base.SetSize(w, h)
	reg.Register(n)
	return n, nil
}

// Buffer returns the backing buffer for direct drawing.
func (n *FrameBuffer) Buffer() *buffer.Buffer { return n.fb }

// Resize reallocates the backing buffer and updates the node's size.
// Contents are not preserved; redraw before the next frame.
func (n *FrameBuffer) Resize(w, h int) error {
	if err := n.fb.Resize(w, h); err != nil {
		return err
	}
	n.SetSize(w, h)
	n.MarkDirty()
	return nil
}

// Draw composites the backing buffer at the node's screen position.
func (n *FrameBuffer) Draw(buf *buffer.Buffer, dt time.Duration) {
	x, y := n.ScreenPosition()
	buf.DrawBuffer(x, y, n.fb)
}
