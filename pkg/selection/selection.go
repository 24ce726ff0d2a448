// Package selection implements cross-node text selection: the global
// anchor/focus gesture state, the per-node algorithm that converts global
// screen coordinates into local half-open character ranges, and the
// aggregation of selected fragments into one string in reading order.
package selection

// Point is an absolute screen cell coordinate.
type Point struct {
	X, Y int
}

// State is the one global selection gesture. Anchor is where the drag
// started, Focus is where it currently is, both in absolute screen cells.
// Active means a selection exists; Selecting means the drag is still in
// progress. When Active is false no node may report a local range.
type State struct {
	Anchor    Point
	Focus     Point
	Active    bool
	Selecting bool
}

// Normalized returns the gesture endpoints ordered by reading order, so a
// right-to-left or bottom-to-top drag selects the same cells as its mirror.
func (s State) Normalized() (start, end Point) {
	a, f := s.Anchor, s.Focus
	if f.Y < a.Y || (f.Y == a.Y && f.X < a.X) {
		return f, a
	}
	return a, f
}

// Range is a half-open [Start, End) character offset pair into a node's own
// text. A Range only exists when Start < End; degenerate ranges are reported
// as absent instead.
type Range struct {
	Start, End int
}

// Len returns the number of selected characters.
func (r Range) Len() int { return r.End - r.Start }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lineCase computes the selected column span on one physical row of text at
// screen row `row` starting at column `x` with `length` characters. Four
// cases: the row carries both endpoints, sits strictly between them, carries
// only the start, or carries only the end.
func lineCase(start, end Point, x, row, length int) (Range, bool) {
	if row < start.Y || row > end.Y {
		return Range{}, false
	}

	switch {
	case start.Y == row && end.Y == row:
		a := clamp(start.X-x, 0, length)
		b := clamp(end.X-x, 0, length)
		if a >= b {
			return Range{}, false
		}
		return Range{Start: a, End: b}, true
	case row > start.Y && row < end.Y:
		if length <= 0 {
			return Range{}, false
		}
		return Range{Start: 0, End: length}, true
	case row == start.Y:
		a := clamp(start.X-x, 0, length)
		if a >= length {
			return Range{}, false
		}
		return Range{Start: a, End: length}, true
	default: // row == end.Y
		b := clamp(end.X-x, 0, length)
		if b <= 0 {
			return Range{}, false
		}
		return Range{Start: 0, End: b}, true
	}
}

// LineRange resolves the local range for a single-line node at (x, y) with
// the given text length.
func LineRange(s State, x, y, length int) (Range, bool) {
	if !s.Active {
		return Range{}, false
	}
	start, end := s.Normalized()
	return lineCase(start, end, x, y, length)
}

// MultiLineRange resolves the local range for a node at (x, y) whose text
// spans len(widths) physical lines. starts[i] is the character offset of
// line i in the node's own text and widths[i] its length. The per-line
// spans are merged into one range from the first selected line's start
// offset to the last selected line's end offset.
func MultiLineRange(s State, x, y int, starts, widths []int) (Range, bool) {
	if !s.Active || len(widths) == 0 || len(starts) != len(widths) {
		return Range{}, false
	}
	start, end := s.Normalized()

	merged := Range{}
	found := false
	for i := range widths {
		lr, ok := lineCase(start, end, x, y+i, widths[i])
		if !ok {
			continue
		}
		abs := Range{Start: starts[i] + lr.Start, End: starts[i] + lr.End}
		if !found {
			merged = abs
			found = true
			continue
		}
		merged.End = abs.End
	}

	if !found || merged.Start >= merged.End {
		return Range{}, false
	}
	return merged, true
}

// OverlapsRows reports whether the selection's vertical extent touches the
// rows [y, y+height). Nodes without a line table fall back to selecting
// everything whenever this is true.
func OverlapsRows(s State, y, height int) bool {
	if !s.Active || height <= 0 {
		return false
	}
	start, end := s.Normalized()
	return y <= end.Y && y+height > start.Y
}
