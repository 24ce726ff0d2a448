// Package scene implements the retained node tree the renderer draws each
// frame: positioned, z-ordered, optionally visible nodes that composite
// into a shared cell buffer and register themselves for mouse hit testing.
//
// Concrete node types embed Base and override Draw. The tree is owned by a
// single goroutine; no internal locking is performed.
package scene

import (
	"time"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/errors"
	"github.com/okanek/tessera/pkg/input"
)

// Context is the capability surface a tree root exposes to its nodes:
// hit-region registration during traversal, viewport dimensions, and
// repaint scheduling. The renderer owns the implementation.
type Context interface {
	AddHitRegion(r buffer.Rect, handle uint32)
	ViewportWidth() int
	ViewportHeight() int
	RequestRepaint()
}

// Teardown is implemented by nodes that hold resources to release when the
// node is destroyed.
type Teardown interface {
	Teardown()
}

// Node is a member of the scene tree. All implementations embed Base,
// which provides everything except Draw.
type Node interface {
	ID() string
	Handle() uint32

	Position() (x, y int)
	SetPosition(x, y int)
	Width() int
	Height() int
	SetSize(w, h int)
	ZIndex() int
	SetZIndex(z int)
	Visible() bool
	SetVisible(visible bool)
	Selectable() bool
	SetSelectable(selectable bool)

	Parent() Node
	Children() []Node
	AddChild(child Node) error
	RemoveChild(child Node) bool
	Destroy() error

	ScreenPosition() (x, y int)
	Bounds() buffer.Rect

	Dirty() bool
	MarkDirty()
	SetContext(ctx Context)

	// OnMouse handles a pointer event delivered by the dispatcher. The
	// default implementation ignores the event so it bubbles onward.
	OnMouse(ev *input.MouseEvent)

	// Draw renders the node's own content. Containers leave it empty;
	// children are drawn by the traversal, not by Draw.
	Draw(buf *buffer.Buffer, dt time.Duration)

	base() *Base
}

// Base carries the tree state shared by every node: identity, geometry,
// stacking, visibility, parent and children links, and dirty tracking.
// Embed it by value and register the node before use.
type Base struct {
	id     string
	handle uint32

	x, y          int
	width, height int
	z             int

	visible    bool
	selectable bool
	dirty      bool
	destroyed  bool

	parent           *Base
	children         []Node
	childrenNeedSort bool

	ctx      Context
	registry *Registry
}

// NewBase returns a Base with the given id, visible and at the origin.
// An empty id gets a generated one at registration.
func NewBase(id string) Base {
	return Base{id: id, visible: true}
}

func (b *Base) base() *Base { return b }

// ID returns the node's stable string identifier.
func (b *Base) ID() string { return b.id }

// Handle returns the registry-assigned numeric handle, or 0 before
// registration.
func (b *Base) Handle() uint32 { return b.handle }

// Position returns the node's local offset within its parent.
func (b *Base) Position() (x, y int) { return b.x, b.y }

// SetPosition moves the node relative to its parent. Children keep their
// own local offsets; their screen positions follow through the parent
// chain.
func (b *Base) SetPosition(x, y int) {
	if b.x == x && b.y == y {
		return
	}
	b.x = x
	b.y = y
	b.MarkDirty()
}

// Width returns the node's declared width in cells.
func (b *Base) Width() int { return b.width }

// Height returns the node's declared height in cells.
func (b *Base) Height() int { return b.height }

// SetSize updates the node's declared dimensions.
func (b *Base) SetSize(w, h int) {
	if b.width == w && b.height == h {
		return
	}
	b.width = w
	b.height = h
	b.MarkDirty()
}

// ZIndex returns the node's stacking order among its siblings.
func (b *Base) ZIndex() int { return b.z }

// SetZIndex changes the node's stacking order among its siblings. Higher
// values draw later. A parent's z-order places its whole subtree.
func (b *Base) SetZIndex(z int) {
	if b.z == z {
		return
	}
	b.z = z
	if b.parent != nil {
		b.parent.childrenNeedSort = true
	}
	b.MarkDirty()
}

// Visible reports whether the node and its subtree take part in rendering
// and hit testing.
func (b *Base) Visible() bool { return b.visible }

// SetVisible toggles the node. An invisible node's entire subtree is
// skipped by the traversal.
func (b *Base) SetVisible(visible bool) {
	if b.visible == visible {
		return
	}
	b.visible = visible
	b.MarkDirty()
}

// Selectable reports whether the node consents to starting text
// selections within its bounds.
func (b *Base) Selectable() bool { return b.selectable }

// SetSelectable toggles selection consent.
func (b *Base) SetSelectable(selectable bool) { b.selectable = selectable }

// Parent returns the node's parent, or nil at the root.
func (b *Base) Parent() Node {
	if b.parent == nil || b.parent.registry == nil {
		return nil
	}
	return b.parent.registry.Node(b.parent.handle)
}

// Children returns the node's children in insertion order, or render
// order after a traversal has sorted them. Callers must not mutate the
// returned slice.
func (b *Base) Children() []Node { return b.children }

// AddChild attaches a node, detaching it from any current parent first.
// Attaching a node to itself or to one of its own descendants fails.
func (b *Base) AddChild(child Node) error {
	if child == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot add nil child")
	}
	cb := child.base()
	if cb.destroyed {
		return errors.New(errors.ErrCodeNodeDestroyed, "cannot add destroyed node").
			WithContext("id", cb.id)
	}
	for anc := b; anc != nil; anc = anc.parent {
		if anc == cb {
			return errors.New(errors.ErrCodeNodeCycle, "node cannot become its own descendant").
				WithContext("id", cb.id)
		}
	}
	if cb.parent != nil {
		cb.parent.removeChildBase(cb)
	}
	cb.parent = b
	b.children = append(b.children, child)
	b.childrenNeedSort = true
	b.MarkDirty()
	return nil
}

// RemoveChild detaches a direct child. Returns false if the node is not a
// child of this one.
func (b *Base) RemoveChild(child Node) bool {
	if child == nil {
		return false
	}
	cb := child.base()
	if cb.parent != b {
		return false
	}
	if !b.removeChildBase(cb) {
		return false
	}
	cb.parent = nil
	b.MarkDirty()
	return true
}

func (b *Base) removeChildBase(cb *Base) bool {
	for i, c := range b.children {
		if c.base() == cb {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return true
		}
	}
	return false
}

// Destroy tears down a detached subtree: children first, then this node's
// registry handle and any Teardown hook. Destroying a node that still has
// a parent is a caller bug and fails without touching the tree.
func (b *Base) Destroy() error {
	if b.destroyed {
		return errors.New(errors.ErrCodeNodeDestroyed, "node already destroyed").
			WithContext("id", b.id)
	}
	if b.parent != nil {
		return errors.New(errors.ErrCodeNodeParented, "cannot destroy a parented node, detach it first").
			WithContext("id", b.id)
	}
	for len(b.children) > 0 {
		child := b.children[len(b.children)-1]
		cb := child.base()
		b.children = b.children[:len(b.children)-1]
		cb.parent = nil
		if err := child.Destroy(); err != nil {
			return err
		}
	}

	var self Node
	if b.registry != nil {
		self = b.registry.Node(b.handle)
		b.registry.release(b.handle)
	}
	b.destroyed = true
	if td, ok := self.(Teardown); ok {
		td.Teardown()
	}
	return nil
}

// ScreenPosition returns the node's absolute position: its local offset
// plus every ancestor's, with the root as origin.
func (b *Base) ScreenPosition() (x, y int) {
	x, y = b.x, b.y
	for p := b.parent; p != nil; p = p.parent {
		x += p.x
		y += p.y
	}
	return x, y
}

// Bounds returns the node's absolute bounding rectangle.
func (b *Base) Bounds() buffer.Rect {
	x, y := b.ScreenPosition()
	return buffer.Rect{X: x, Y: y, Width: b.width, Height: b.height}
}

// Dirty reports whether the node changed since the last traversal.
func (b *Base) Dirty() bool { return b.dirty }

// MarkDirty flags the node and its ancestors for redraw and requests a
// repaint from the context-owning ancestor, normally the root.
func (b *Base) MarkDirty() {
	for cur := b; cur != nil; cur = cur.parent {
		cur.dirty = true
		if cur.ctx != nil {
			cur.ctx.RequestRepaint()
			return
		}
	}
}

// SetContext attaches the render context. Only the tree root carries one;
// descendants reach it through dirty propagation.
func (b *Base) SetContext(ctx Context) { b.ctx = ctx }

// Context returns the attached render context, or nil.
func (b *Base) Context() Context { return b.ctx }

// OnMouse is the default pointer handler: it ignores the event, letting
// it bubble to the parent.
func (b *Base) OnMouse(ev *input.MouseEvent) {}

// Draw is the default draw step: pure containers render nothing.
func (b *Base) Draw(buf *buffer.Buffer, dt time.Duration) {}

// ShouldStartSelection reports whether a selection gesture may begin at
// the given screen cell: the node must be selectable and cover the cell.
func (b *Base) ShouldStartSelection(x, y int) bool {
	return b.selectable && b.Bounds().Contains(x, y)
}

// SelectionPosition returns the node's absolute position for reading-order
// sorting of aggregated selections.
func (b *Base) SelectionPosition() (x, y int) { return b.ScreenPosition() }
