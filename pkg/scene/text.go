package scene

import (
	"time"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/selection"
	"github.com/okanek/tessera/pkg/textbuf"
)

// Text renders a styled, possibly multi-line text buffer and implements
// the selectable capability: the selection controller pushes global
// gesture state in, the node converts it to a local cluster range through
// its line table.
type Text struct {
	Base

	tb        *textbuf.Buffer
	selFg     *color.RGBA
	selBg     *color.RGBA
	lastState *selection.State
}

// NewText creates and registers a text node. Text nodes are selectable by
// default.
func NewText(reg *Registry, id string, m buffer.WidthMethod) *Text {
	t := &Text{Base: NewBase(id), tb: textbuf.New(m)}
	t.SetSelectable(true)
	reg.Register(t)
	return t
}

// Content returns the underlying text buffer for styled writes. Call
// Refresh after mutating it directly.
func (t *Text) Content() *textbuf.Buffer { return t.tb }

// SetText replaces the node's content with plain text.
func (t *Text) SetText(s string) {
	t.tb.Reset()
	t.tb.WriteString(s)
	t.Refresh()
}

// Write appends plain text.
func (t *Text) Write(s string) {
	t.tb.WriteString(s)
	t.Refresh()
}

// WriteStyled appends text with explicit style overrides. Nil values fall
// back to the buffer defaults.
func (t *Text) WriteStyled(s string, fg, bg *color.RGBA, attrs *uint8) {
	t.tb.WriteStyledString(s, fg, bg, attrs)
	t.Refresh()
}

// Text returns the node's plain text.
func (t *Text) Text() string { return t.tb.String() }

// SetDefaultStyle sets the style applied to chunks without their own.
func (t *Text) SetDefaultStyle(fg color.RGBA, bg *color.RGBA, attrs uint8) {
	t.tb.SetDefaultForeground(fg)
	t.tb.SetDefaultBackground(bg)
	t.tb.SetDefaultAttributes(attrs)
	t.MarkDirty()
}

// SetSelectionColors sets explicit selection colors. Nil values keep the
// inverse-video fallback.
func (t *Text) SetSelectionColors(fg, bg *color.RGBA) {
	t.selFg = fg
	t.selBg = bg
	t.MarkDirty()
}

// Refresh recomputes the line table, sizes the node to its content, and
// reapplies any cached selection state against the new geometry.
func (t *Text) Refresh() {
	t.tb.FinalizeLineInfo()
	t.SetSize(t.tb.MaxLineWidth(), t.tb.LineCount())
	if t.lastState != nil {
		t.applySelection(t.lastState)
	}
	t.MarkDirty()
}

// Draw renders the text at the node's screen position.
func (t *Text) Draw(buf *buffer.Buffer, dt time.Duration) {
	x, y := t.ScreenPosition()
	t.tb.DrawTo(buf, x, y)
}

// OnSelectionChanged receives the controller's global selection state and
// reports whether this node now holds a non-empty local range. A nil or
// inactive state clears the node's highlight.
func (t *Text) OnSelectionChanged(s *selection.State) bool {
	if s == nil || !s.Active {
		t.lastState = nil
		if t.tb.HasSelection() {
			t.tb.ResetSelection()
			t.MarkDirty()
		}
		return false
	}
	st := *s
	t.lastState = &st
	return t.applySelection(&st)
}

// ReevaluateSelection recomputes the local range from the last state the
// controller pushed, for geometry changes without a new gesture.
func (t *Text) ReevaluateSelection() bool {
	if t.lastState == nil {
		return false
	}
	return t.applySelection(t.lastState)
}

func (t *Text) applySelection(s *selection.State) bool {
	x, y := t.ScreenPosition()
	starts, widths := t.tb.LineTable()
	r, ok := selection.MultiLineRange(*s, x, y, starts, widths)
	if !ok {
		if t.tb.HasSelection() {
			t.tb.ResetSelection()
			t.MarkDirty()
		}
		return false
	}
	t.tb.SetSelection(r.Start, r.End, t.selFg, t.selBg)
	t.MarkDirty()
	return t.tb.HasSelection()
}

// SelectedText returns the node's currently highlighted text.
func (t *Text) SelectedText() string { return t.tb.SelectedText() }

// HasSelection reports whether the node holds a non-empty local range.
func (t *Text) HasSelection() bool { return t.tb.HasSelection() }
