package scene

import "github.com/okanek/tessera/pkg/buffer"

// HitGrid maps screen cells to node handles for mouse hit testing. It is
// rebuilt from scratch every render pass, so entries for moved or removed
// nodes never linger. The last writer wins per cell, which makes traversal
// order the topmost-wins order.
type HitGrid struct {
	width  int
	height int
	cells  []uint32
}

// NewHitGrid creates a hit grid with the given dimensions.
func NewHitGrid(width, height int) *HitGrid {
	g := &HitGrid{}
	g.Resize(width, height)
	return g
}

// Resize updates the grid dimensions, dropping all entries.
func (g *HitGrid) Resize(width, height int) {
	if width == g.width && height == g.height {
		return
	}
	g.width = width
	g.height = height
	if width <= 0 || height <= 0 {
		g.cells = nil
		return
	}
	g.cells = make([]uint32, width*height)
}

// Clear removes all entries.
func (g *HitGrid) Clear() {
	clear(g.cells)
}

// Add records a node handle over the given screen rectangle, clipped to
// the grid. Empty rectangles and the zero handle are ignored.
func (g *HitGrid) Add(r buffer.Rect, handle uint32) {
	if handle == 0 || g.width <= 0 || g.height <= 0 {
		return
	}
	r = r.Intersection(buffer.Rect{Width: g.width, Height: g.height})
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		row := y * g.width
		for x := r.X; x < r.X+r.Width; x++ {
			g.cells[row+x] = handle
		}
	}
}

// At returns the handle of the topmost node covering the cell, or 0.
func (g *HitGrid) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0
	}
	return g.cells[y*g.width+x]
}
