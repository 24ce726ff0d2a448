// Package textbuf provides a styled text buffer: a run of grapheme cells
// with per-cell colors and attributes, newline-aware line tracking, and a
// selection overlay. Scene text nodes build their content here and hand the
// finished buffer to the cell grid for drawing.
package textbuf

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
)

// Chunk is a styled text fragment appended to a buffer. Nil style fields
// fall back to the buffer defaults at draw time.
type Chunk struct {
	Text       string
	Foreground *color.RGBA
	Background *color.RGBA
	Attributes *uint8
}

// LineInfo describes one physical line: the cluster index where it starts
// and its length in clusters, excluding the line break itself.
type LineInfo struct {
	Start int
	Width int
}

// cell is one grapheme cluster with its resolved style.
type cell struct {
	cluster string
	display rune
	width   int
	isBreak bool

	fg    *color.RGBA
	bg    *color.RGBA
	attrs *uint8
}

// Buffer accumulates styled clusters. Offsets used by the selection overlay
// count clusters, with line breaks occupying one offset each.
type Buffer struct {
	cells       []cell
	widthMethod buffer.WidthMethod

	defaultFg    color.RGBA
	defaultBg    *color.RGBA
	defaultAttrs uint8

	lines     []LineInfo
	finalized bool

	selStart int
	selEnd   int
	selFg    *color.RGBA
	selBg    *color.RGBA
	selSet   bool
}

// New creates an empty text buffer using the given width method.
func New(m buffer.WidthMethod) *Buffer {
	return &Buffer{
		widthMethod: m,
		defaultFg:   color.White,
		selStart:    -1,
		selEnd:      -1,
	}
}

// Length returns the buffer's cluster count, line breaks included.
func (t *Buffer) Length() int { return len(t.cells) }

// WidthMethod returns the measuring method clusters were ingested with.
func (t *Buffer) WidthMethod() buffer.WidthMethod { return t.widthMethod }

// SetDefaultForeground sets the color used by chunks without their own.
func (t *Buffer) SetDefaultForeground(fg color.RGBA) { t.defaultFg = fg }

// SetDefaultBackground sets the background used by chunks without their
// own. Nil keeps backgrounds inherited from the destination at draw time.
func (t *Buffer) SetDefaultBackground(bg *color.RGBA) { t.defaultBg = bg }

// SetDefaultAttributes sets the attribute mask used by chunks without
// their own.
func (t *Buffer) SetDefaultAttributes(attrs uint8) { t.defaultAttrs = attrs }

// ResetDefaults restores the zero-value defaults.
func (t *Buffer) ResetDefaults() {
	t.defaultFg = color.White
	t.defaultBg = nil
	t.defaultAttrs = 0
}

// Reset drops all content, line info, and the selection.
func (t *Buffer) Reset() {
	t.cells = t.cells[:0]
	t.lines = nil
	t.finalized = false
	t.ResetSelection()
}

// WriteChunk appends a styled fragment and returns the number of clusters
// added. Text is NFC-normalized before segmentation so combining sequences
// occupy single cells.
func (t *Buffer) WriteChunk(c Chunk) int {
	text := norm.NFC.String(c.Text)
	if text == "" {
		return 0
	}
	t.finalized = false

	added := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Str()
		runes := g.Runes()

		cl := cell{
			cluster: cluster,
			display: runes[0],
			fg:      c.Foreground,
			bg:      c.Background,
			attrs:   c.Attributes,
		}
		if strings.ContainsAny(cluster, "\r\n") {
			cl.isBreak = true
			cl.display = '\n'
			cl.cluster = "\n"
		} else {
			cl.width = buffer.MeasureText(cluster, t.widthMethod)
			if cl.width < 1 {
				cl.width = 1
			}
		}
		t.cells = append(t.cells, cl)
		added++
	}
	return added
}

// WriteString appends unstyled text using the buffer defaults.
func (t *Buffer) WriteString(s string) int {
	return t.WriteChunk(Chunk{Text: s})
}

// WriteStyledString appends text with explicit style overrides.
func (t *Buffer) WriteStyledString(s string, fg, bg *color.RGBA, attrs *uint8) int {
	return t.WriteChunk(Chunk{Text: s, Foreground: fg, Background: bg, Attributes: attrs})
}

// FinalizeLineInfo recomputes the line table. Call after content changes
// and before asking for line info or drawing.
func (t *Buffer) FinalizeLineInfo() {
	t.lines = t.lines[:0]
	lineStart := 0
	width := 0
	for i, cl := range t.cells {
		if cl.isBreak {
			t.lines = append(t.lines, LineInfo{Start: lineStart, Width: width})
			lineStart = i + 1
			width = 0
			continue
		}
		width++
	}
	t.lines = append(t.lines, LineInfo{Start: lineStart, Width: width})
	t.finalized = true
}

// LineCount returns the number of physical lines.
func (t *Buffer) LineCount() int {
	if !t.finalized {
		t.FinalizeLineInfo()
	}
	return len(t.lines)
}

// Lines returns the line table.
func (t *Buffer) Lines() []LineInfo {
	if !t.finalized {
		t.FinalizeLineInfo()
	}
	return t.lines
}

// LineTable returns the line table as parallel start and width slices, the
// shape the selection range math consumes.
func (t *Buffer) LineTable() (starts, widths []int) {
	lines := t.Lines()
	starts = make([]int, len(lines))
	widths = make([]int, len(lines))
	for i, li := range lines {
		starts[i] = li.Start
		widths[i] = li.Width
	}
	return starts, widths
}

// MaxLineWidth returns the widest line's cluster count.
func (t *Buffer) MaxLineWidth() int {
	maxw := 0
	for _, li := range t.Lines() {
		if li.Width > maxw {
			maxw = li.Width
		}
	}
	return maxw
}

// SetSelection highlights the half-open cluster range [start, end). Nil
// colors fall back to inverse video at draw time. Degenerate ranges clear
// the selection instead.
func (t *Buffer) SetSelection(start, end int, fg, bg *color.RGBA) {
	start = max(0, start)
	end = min(len(t.cells), end)
	if start >= end {
		t.ResetSelection()
		return
	}
	t.selStart = start
	t.selEnd = end
	t.selFg = fg
	t.selBg = bg
	t.selSet = true
}

// ResetSelection removes the highlight.
func (t *Buffer) ResetSelection() {
	t.selStart = -1
	t.selEnd = -1
	t.selFg = nil
	t.selBg = nil
	t.selSet = false
}

// Selection returns the highlighted cluster range, if any.
func (t *Buffer) Selection() (start, end int, ok bool) {
	if !t.selSet {
		return 0, 0, false
	}
	return t.selStart, t.selEnd, true
}

// HasSelection reports whether a non-empty highlight exists.
func (t *Buffer) HasSelection() bool { return t.selSet }

// String returns the buffer's plain text, line breaks included.
func (t *Buffer) String() string {
	var sb strings.Builder
	for _, cl := range t.cells {
		sb.WriteString(cl.cluster)
	}
	return sb.String()
}

// TextInRange returns the plain text of the half-open cluster range.
func (t *Buffer) TextInRange(start, end int) string {
	start = max(0, start)
	end = min(len(t.cells), end)
	if start >= end {
		return ""
	}
	var sb strings.Builder
	for _, cl := range t.cells[start:end] {
		sb.WriteString(cl.cluster)
	}
	return sb.String()
}

// SelectedText returns the highlighted plain text.
func (t *Buffer) SelectedText() string {
	if !t.selSet {
		return ""
	}
	return t.TextInRange(t.selStart, t.selEnd)
}

// DrawTo renders the buffer into a cell grid with its top-left cluster at
// (x, y). Selection colors override per-cell styles inside the highlighted
// range; without explicit selection colors the cell's colors are swapped.
func (t *Buffer) DrawTo(dst *buffer.Buffer, x, y int) {
	col := x
	row := y
	for i, cl := range t.cells {
		if cl.isBreak {
			row++
			col = x
			continue
		}

		fg := t.defaultFg
		if cl.fg != nil {
			fg = *cl.fg
		}
		bgPtr := t.defaultBg
		if cl.bg != nil {
			bgPtr = cl.bg
		}
		attrs := t.defaultAttrs
		if cl.attrs != nil {
			attrs = *cl.attrs
		}

		var sel *buffer.TextSelection
		if t.selSet && i >= t.selStart && i < t.selEnd {
			// The selection covers this whole cluster; reuse the grid's
			// run splitting with a single-cluster range.
			sel = &buffer.TextSelection{Start: 0, End: 1, Foreground: t.selFg, Background: t.selBg}
		}
		dst.DrawText(cl.cluster, col, row, fg, bgPtr, attrs, sel)

		col += cl.width
	}
}
