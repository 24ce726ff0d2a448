package selection

import "sort"

// Selectable is the capability a node implements to take part in text
// selection. OnSelectionChanged receives the new global state (nil when the
// selection is cleared) and returns whether the node now holds a non-empty
// local range. Implementations cache the state they were last given so they
// can recompute the range after their own geometry changes.
type Selectable interface {
	ShouldStartSelection(x, y int) bool
	OnSelectionChanged(s *State) bool
	SelectedText() string
	HasSelection() bool
}

// Target is a selectable node with an absolute screen position, which the
// aggregation step needs for reading order.
type Target interface {
	Selectable
	SelectionPosition() (x, y int)
}

// Controller owns the global selection gesture and pushes every state
// change to the current set of selectable nodes. The node set is supplied by
// a lister so the controller always sees the live tree.
type Controller struct {
	state State
	nodes func() []Target
}

// NewController creates a controller over the given node lister.
func NewController(nodes func() []Target) *Controller {
	if nodes == nil {
		nodes = func() []Target { return nil }
	}
	return &Controller{nodes: nodes}
}

// State returns a copy of the current gesture state.
func (c *Controller) State() State { return c.state }

// IsActive reports whether a selection currently exists.
func (c *Controller) IsActive() bool { return c.state.Active }

// IsSelecting reports whether a drag gesture is in progress.
func (c *Controller) IsSelecting() bool { return c.state.Selecting }

// Begin starts a selection gesture at (x, y) if some selectable node agrees
// to start one there. Returns whether a gesture began.
func (c *Controller) Begin(x, y int) bool {
	allowed := false
	for _, n := range c.nodes() {
		if n.ShouldStartSelection(x, y) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	c.state = State{
		Anchor:    Point{X: x, Y: y},
		Focus:     Point{X: x, Y: y},
		Active:    true,
		Selecting: true,
	}
	c.broadcast()
	return true
}

// Update moves the focus point of an in-progress gesture.
func (c *Controller) Update(x, y int) {
	if !c.state.Selecting {
		return
	}
	c.state.Focus = Point{X: x, Y: y}
	c.broadcast()
}

// End finishes the drag. The selection stays active until Clear.
func (c *Controller) End() {
	if !c.state.Selecting {
		return
	}
	c.state.Selecting = false
	c.broadcast()
}

// Clear drops the selection entirely. Every node is notified with a nil
// state and must report empty afterwards.
func (c *Controller) Clear() {
	c.state = State{}
	for _, n := range c.nodes() {
		n.OnSelectionChanged(nil)
	}
}

// Rebroadcast pushes the current state to every node again. Used after
// layout or viewport changes move nodes under an existing selection.
func (c *Controller) Rebroadcast() {
	if !c.state.Active {
		return
	}
	c.broadcast()
}

func (c *Controller) broadcast() {
	s := c.state
	for _, n := range c.nodes() {
		n.OnSelectionChanged(&s)
	}
}

// SelectedText aggregates the selected fragments of every reporting node in
// reading order, joined with newlines.
func (c *Controller) SelectedText() string {
	if !c.state.Active {
		return ""
	}
	var entries []Entry
	for _, n := range c.nodes() {
		if !n.HasSelection() {
			continue
		}
		x, y := n.SelectionPosition()
		entries = append(entries, Entry{X: x, Y: y, Text: n.SelectedText()})
	}
	return Aggregate(entries)
}

// Entry is one node's contribution to the aggregated selection.
type Entry struct {
	X, Y int
	Text string
}

// Aggregate sorts entries into reading order (ascending y, then ascending
// x) and joins their text with newline separators.
func Aggregate(entries []Entry) string {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Y != entries[j].Y {
			return entries[i].Y < entries[j].Y
		}
		return entries[i].X < entries[j].X
	})

	out := ""
	for i, e := range entries {
		if i > 0 {
			out += "\n"
		}
		out += e.Text
	}
	return out
}
