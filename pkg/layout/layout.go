// Package layout defines the contract between the scene tree and an
// external constraint solver. The engine consumes only resolved numeric
// boxes; the constraint algorithm itself lives behind the Solver
// interface, with Fixed as the built-in passthrough used when no solver
// is attached.
package layout

// Box is a resolved layout: a local position and size in cells.
type Box struct {
	X, Y, Width, Height int
}

// Constraints bound the space a solver may hand to a node.
type Constraints struct {
	MinWidth, MaxWidth   int
	MinHeight, MaxHeight int
}

// Tight returns constraints that force an exact size.
func Tight(w, h int) Constraints {
	return Constraints{MinWidth: w, MaxWidth: w, MinHeight: h, MaxHeight: h}
}

// Loose returns constraints with only max bounds.
func Loose(w, h int) Constraints {
	return Constraints{MaxWidth: w, MaxHeight: h}
}

// Constrain clamps a box's size to fit the constraints.
func (c Constraints) Constrain(b Box) Box {
	b.Width = clamp(b.Width, c.MinWidth, c.MaxWidth)
	b.Height = clamp(b.Height, c.MinHeight, c.MaxHeight)
	return b
}

// Spec declares a node's layout wishes: a position, a size, and flex
// factors for solvers that distribute leftover space. Fixed ignores the
// flex fields.
type Spec struct {
	X, Y          int
	Width, Height int
	Grow          float64
	Shrink        float64
	Basis         int
}

// Solver resolves one node's local box from its declared spec and the
// parent's resolved content box.
type Solver interface {
	Resolve(spec Spec, parent Box) Box
}

// ContentSizeChanged is the notification fed back to a solver when a
// node's intrinsic content size changes and a solved layout is stale.
type ContentSizeChanged func(handle uint32, w, h int)

// Target is the slice of a scene node the layout applies to.
type Target interface {
	SetPosition(x, y int)
	SetSize(w, h int)
}

// Apply writes a resolved box onto a node.
func Apply(t Target, b Box) {
	if t == nil {
		return
	}
	t.SetPosition(b.X, b.Y)
	t.SetSize(b.Width, b.Height)
}

// Fixed is the no-solver fallback: declared position and size pass
// through, clipped to the parent's content box so a fixed child never
// resolves larger than the space it sits in.
type Fixed struct{}

// Resolve clamps the declared box into the parent.
func (Fixed) Resolve(spec Spec, parent Box) Box {
	b := Box{
		X:      spec.X,
		Y:      spec.Y,
		Width:  max(0, spec.Width),
		Height: max(0, spec.Height),
	}
	if parent.Width > 0 && b.Width > parent.Width {
		b.Width = parent.Width
	}
	if parent.Height > 0 && b.Height > parent.Height {
		b.Height = parent.Height
	}
	return b
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
