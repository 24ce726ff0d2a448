package input

import "testing"

type recordingHandler struct {
	name    string
	log     *[]string
	prevent bool
}

func (h *recordingHandler) OnMouse(ev *MouseEvent) {
	*h.log = append(*h.log, h.name+":"+ev.Type.String())
	if h.prevent {
		ev.PreventDefault()
	}
}

func TestDispatchBubblesToRoot(t *testing.T) {
	var log []string
	target := &recordingHandler{name: "target", log: &log}
	parent := &recordingHandler{name: "parent", log: &log}
	root := &recordingHandler{name: "root", log: &log}

	ev := &MouseEvent{Type: MouseDown, X: 3, Y: 4, Button: MouseLeft}
	DispatchMouse(ev, target, parent, root)

	want := []string{"target:down", "parent:down", "root:down"}
	if len(log) != len(want) {
		t.Fatalf("delivery log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("delivery log = %v, want %v", log, want)
		}
	}
}

func TestDispatchStopsOnPreventDefault(t *testing.T) {
	var log []string
	target := &recordingHandler{name: "target", log: &log}
	parent := &recordingHandler{name: "parent", log: &log, prevent: true}
	root := &recordingHandler{name: "root", log: &log}

	ev := &MouseEvent{Type: MouseUp}
	DispatchMouse(ev, target, parent, root)

	if len(log) != 2 {
		t.Fatalf("delivery log = %v, want target and parent only", log)
	}
	if !ev.DefaultPrevented() {
		t.Fatal("DefaultPrevented() = false after PreventDefault")
	}
}

func TestDispatchSkipsNilHandlers(t *testing.T) {
	var log []string
	root := &recordingHandler{name: "root", log: &log}
	DispatchMouse(&MouseEvent{Type: MouseMove}, nil, root)
	if len(log) != 1 || log[0] != "root:move" {
		t.Fatalf("delivery log = %v, want [root:move]", log)
	}
}

// gridHit builds a Hit resolver over a fixed handle layout.
func gridHit(handles map[[2]int]uint32) Hit {
	return func(x, y int) uint32 {
		return handles[[2]int{x, y}]
	}
}

func collect(events []Targeted) []string {
	var out []string
	for _, te := range events {
		out = append(out, te.Event.Type.String())
	}
	return out
}

func TestPointerClickWithoutDrag(t *testing.T) {
	hit := gridHit(map[[2]int]uint32{{2, 2}: 7})
	var p Pointer

	down := p.Track(MouseEvent{Type: MouseDown, X: 2, Y: 2, Button: MouseLeft}, hit)
	if len(down) != 2 || down[0].Event.Type != MouseOver || down[1].Event.Type != MouseDown {
		t.Fatalf("down events = %v", collect(down))
	}
	if down[1].Handle != 7 {
		t.Fatalf("down handle = %d, want 7", down[1].Handle)
	}

	up := p.Track(MouseEvent{Type: MouseUp, X: 2, Y: 2, Button: MouseLeft}, hit)
	if len(up) != 1 || up[0].Event.Type != MouseUp || up[0].Handle != 7 {
		t.Fatalf("up events = %v", collect(up))
	}
}

func TestPointerDragProducesDragAndDragEnd(t *testing.T) {
	hit := gridHit(map[[2]int]uint32{{1, 1}: 3, {5, 1}: 3})
	var p Pointer

	p.Track(MouseEvent{Type: MouseDown, X: 1, Y: 1, Button: MouseLeft}, hit)
	drag := p.Track(MouseEvent{Type: MouseMove, X: 5, Y: 1}, hit)
	if len(drag) != 1 || drag[0].Event.Type != MouseDrag || drag[0].Handle != 3 {
		t.Fatalf("drag events = %v", collect(drag))
	}

	end := p.Track(MouseEvent{Type: MouseUp, X: 5, Y: 1, Button: MouseLeft}, hit)
	if len(end) != 1 || end[0].Event.Type != MouseDragEnd || end[0].Handle != 3 {
		t.Fatalf("drag-end events = %v", collect(end))
	}
}

func TestPointerDropOnDifferentNode(t *testing.T) {
	hit := gridHit(map[[2]int]uint32{{0, 0}: 1, {9, 9}: 2})
	var p Pointer

	p.Track(MouseEvent{Type: MouseDown, X: 0, Y: 0, Button: MouseLeft}, hit)
	p.Track(MouseEvent{Type: MouseMove, X: 9, Y: 9}, hit)
	up := p.Track(MouseEvent{Type: MouseUp, X: 9, Y: 9, Button: MouseLeft}, hit)

	if len(up) != 2 {
		t.Fatalf("release events = %v, want drag-end then drop", collect(up))
	}
	if up[0].Event.Type != MouseDragEnd || up[0].Handle != 1 {
		t.Fatalf("first release event = %s on %d", up[0].Event.Type, up[0].Handle)
	}
	if up[1].Event.Type != MouseDrop || up[1].Handle != 2 {
		t.Fatalf("second release event = %s on %d", up[1].Event.Type, up[1].Handle)
	}
}

func TestPointerHoverTransitions(t *testing.T) {
	hit := gridHit(map[[2]int]uint32{{0, 0}: 1, {1, 0}: 2})
	var p Pointer

	first := p.Track(MouseEvent{Type: MouseMove, X: 0, Y: 0}, hit)
	if len(first) != 2 || first[0].Event.Type != MouseOver || first[1].Event.Type != MouseMove {
		t.Fatalf("enter events = %v", collect(first))
	}

	cross := p.Track(MouseEvent{Type: MouseMove, X: 1, Y: 0}, hit)
	if len(cross) != 3 {
		t.Fatalf("crossing events = %v", collect(cross))
	}
	if cross[0].Event.Type != MouseOut || cross[0].Handle != 1 {
		t.Fatalf("crossing[0] = %s on %d, want out on 1", cross[0].Event.Type, cross[0].Handle)
	}
	if cross[1].Event.Type != MouseOver || cross[1].Handle != 2 {
		t.Fatalf("crossing[1] = %s on %d, want over on 2", cross[1].Event.Type, cross[1].Handle)
	}

	leave := p.Track(MouseEvent{Type: MouseMove, X: 5, Y: 5}, hit)
	if len(leave) != 2 || leave[0].Event.Type != MouseOut || leave[1].Handle != 0 {
		t.Fatalf("leave events = %v", collect(leave))
	}
}

func TestPointerResetDropsState(t *testing.T) {
	hit := gridHit(map[[2]int]uint32{{0, 0}: 1})
	var p Pointer

	p.Track(MouseEvent{Type: MouseDown, X: 0, Y: 0, Button: MouseLeft}, hit)
	p.Reset()

	move := p.Track(MouseEvent{Type: MouseMove, X: 0, Y: 0}, hit)
	for _, te := range move {
		if te.Event.Type == MouseDrag {
			t.Fatal("drag emitted after reset")
		}
	}
}

func TestModifiersHas(t *testing.T) {
	m := ModShift | ModCtrl
	if !m.Has(ModShift) || !m.Has(ModCtrl) || !m.Has(ModShift|ModCtrl) {
		t.Fatal("expected held modifiers to report true")
	}
	if m.Has(ModAlt) {
		t.Fatal("ModAlt reported held")
	}
}
