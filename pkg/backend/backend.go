// Package backend defines the terminal abstraction the engine presents
// frames through. Implementations handle terminal I/O, input decoding,
// and cursor control: tcell for real terminals, sim for tests.
package backend

import (
	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/input"
)

// CursorStyle selects the cursor glyph shape.
type CursorStyle string

const (
	CursorBlock     CursorStyle = "block"
	CursorUnderline CursorStyle = "underline"
	CursorBar       CursorStyle = "bar"
)

// Backend is the terminal abstraction layer.
type Backend interface {
	// Init enters the alternate screen and raw mode.
	Init() error

	// Fini restores the terminal state.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetCell stages one composited cell at (x, y). Output happens on Show.
	SetCell(x, y int, cell buffer.Cell)

	// Show synchronizes staged cells to the terminal.
	Show()

	// Sync forces a full repaint on the next Show.
	Sync()

	// Clear blanks the staged screen content.
	Clear()

	// SetCursor positions the hardware cursor and toggles its visibility.
	SetCursor(x, y int, visible bool)

	// SetCursorStyle selects the cursor shape and blink state.
	SetCursorStyle(style CursorStyle, blinking bool)

	// SetCursorColor tints the cursor where the terminal supports it.
	SetCursorColor(c color.RGBA)

	// EnableMouse turns on button and release reporting; motion adds
	// movement and hover reporting.
	EnableMouse(motion bool)

	// DisableMouse turns off all mouse reporting.
	DisableMouse()

	// EnablePaste turns on bracketed paste reporting.
	EnablePaste()

	// DisablePaste turns off bracketed paste reporting.
	DisablePaste()

	// SetTitle sets the terminal window title where supported.
	SetTitle(title string)

	// Beep emits an audible bell.
	Beep()

	// PollEvent blocks until an event is available. Returns nil once the
	// backend is shut down.
	PollEvent() input.Event

	// PostEvent injects an event into the queue.
	PostEvent(ev input.Event) error

	// Suspend releases the terminal, as before spawning a subshell.
	Suspend() error

	// Resume reclaims the terminal after Suspend.
	Resume() error
}
