// Package input defines the structured pointer and key events the engine
// consumes, target-then-bubble delivery, and the pointer policy that turns
// raw press/move/release sequences into drag, drop, over, and out events.
//
// Decoding platform byte streams into these structures is the backend's
// job; this package never touches the terminal.
package input

// Event is a terminal input event as produced by a backend: mouse, key,
// resize, or paste.
type Event interface {
	eventMarker()
}

// EventType identifies what happened with the pointer.
type EventType int

const (
	MouseDown EventType = iota
	MouseUp
	MouseMove
	MouseDrag
	MouseDragEnd
	MouseDrop
	MouseOver
	MouseOut
)

// String returns the event type's wire-stable name.
func (t EventType) String() string {
	switch t {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseMove:
		return "move"
	case MouseDrag:
		return "drag"
	case MouseDragEnd:
		return "drag-end"
	case MouseDrop:
		return "drop"
	case MouseOver:
		return "over"
	case MouseOut:
		return "out"
	default:
		return "unknown"
	}
}

// MouseButton identifies which button was involved.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Modifiers is a bitmask of modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
)

// Has reports whether all the given modifiers are held.
func (m Modifiers) Has(mods Modifiers) bool { return m&mods == mods }

// MouseEvent is a structured pointer event in cell coordinates.
type MouseEvent struct {
	Type   EventType
	X, Y   int
	Button MouseButton
	Mods   Modifiers

	defaultPrevented bool
}

func (MouseEvent) eventMarker() {}

// PreventDefault stops the event from bubbling past the current handler.
func (e *MouseEvent) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a handler stopped bubbling.
func (e *MouseEvent) DefaultPrevented() bool { return e.defaultPrevented }

// KeyEvent is a structured keyboard event: a logical key name, the rune
// for printable keys, the raw bytes the terminal sent, and modifiers.
// Printable keys carry their character as the name ("a", "Q"); special
// keys use lowercase names ("enter", "escape", "up", "f5", "ctrl+c").
type KeyEvent struct {
	Name string
	Rune rune
	Raw  []byte
	Mods Modifiers
}

func (KeyEvent) eventMarker() {}

// ResizeEvent reports the new terminal dimensions.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// PasteEvent carries the text of one bracketed paste.
type PasteEvent struct {
	Text string
}

func (PasteEvent) eventMarker() {}

// MouseHandler consumes pointer events. Scene nodes satisfy this through
// their default no-op handler.
type MouseHandler interface {
	OnMouse(ev *MouseEvent)
}

// DispatchMouse delivers the event along a target-first chain, stopping
// when a handler calls PreventDefault. The caller builds the chain from
// the hit node up through its ancestors.
func DispatchMouse(ev *MouseEvent, chain ...MouseHandler) {
	for _, h := range chain {
		if h == nil {
			continue
		}
		h.OnMouse(ev)
		if ev.defaultPrevented {
			return
		}
	}
}
