package input

// Hit resolves a screen cell to the topmost node handle covering it, with
// 0 meaning no node. The engine backs this with its hit grid.
type Hit func(x, y int) uint32

// Targeted is a semantic event aimed at a specific node handle. A zero
// handle means the event landed on empty space.
type Targeted struct {
	Handle uint32
	Event  MouseEvent
}

// Pointer tracks press and hover state between raw events and expands
// them into semantic events: press-then-move becomes a drag delivered to
// the pressed node, release after a drag becomes drag-end plus a drop on
// the node under the cursor, and hover transitions produce over and out.
type Pointer struct {
	hover    uint32
	pressed  bool
	dragging bool
	source   uint32
}

// Track consumes one raw down, up, or move event and returns the semantic
// events to dispatch, in order. Raw events of other types pass through
// targeted at whatever the hit resolver reports.
func (p *Pointer) Track(ev MouseEvent, hit Hit) []Targeted {
	if hit == nil {
		hit = func(int, int) uint32 { return 0 }
	}
	cur := hit(ev.X, ev.Y)
	var out []Targeted

	crossed := func() {
		if cur == p.hover {
			return
		}
		if p.hover != 0 {
			e := ev
			e.Type = MouseOut
			out = append(out, Targeted{Handle: p.hover, Event: e})
		}
		if cur != 0 {
			e := ev
			e.Type = MouseOver
			out = append(out, Targeted{Handle: cur, Event: e})
		}
		p.hover = cur
	}

	switch ev.Type {
	case MouseDown:
		crossed()
		p.pressed = true
		p.dragging = false
		p.source = cur
		e := ev
		out = append(out, Targeted{Handle: cur, Event: e})

	case MouseMove:
		crossed()
		if p.pressed {
			p.dragging = true
			e := ev
			e.Type = MouseDrag
			out = append(out, Targeted{Handle: p.source, Event: e})
		} else {
			e := ev
			out = append(out, Targeted{Handle: cur, Event: e})
		}

	case MouseUp:
		crossed()
		if p.dragging {
			e := ev
			e.Type = MouseDragEnd
			out = append(out, Targeted{Handle: p.source, Event: e})
			if cur != 0 && cur != p.source {
				e := ev
				e.Type = MouseDrop
				out = append(out, Targeted{Handle: cur, Event: e})
			}
		} else {
			e := ev
			out = append(out, Targeted{Handle: cur, Event: e})
		}
		p.pressed = false
		p.dragging = false
		p.source = 0

	default:
		out = append(out, Targeted{Handle: cur, Event: ev})
	}
	return out
}

// Reset drops all press and hover state, as after a focus loss.
func (p *Pointer) Reset() {
	*p = Pointer{}
}
