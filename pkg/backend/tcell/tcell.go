// Package tcell implements the terminal backend on gdamore/tcell.
package tcell

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/okanek/tessera/pkg/backend"
	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/errors"
	"github.com/okanek/tessera/pkg/input"
)

// buttonBits are the persistent button-state bits of a tcell event mask.
// Wheel bits are transient and tracked separately.
const buttonBits = tcell.Button1 | tcell.Button2 | tcell.Button3 |
	tcell.Button4 | tcell.Button5 | tcell.Button6 | tcell.Button7 | tcell.Button8

// Backend implements backend.Backend using tcell.
type Backend struct {
	screen tcell.Screen
	mode   backend.ColorMode

	// mouse decode state: previous persistent button mask
	lastButtons tcell.ButtonMask

	// cursor state, reapplied together because tcell couples style and color
	cursorStyle backend.CursorStyle
	cursorBlink bool
	cursorColor *color.RGBA

	// bracketed paste accumulation
	inPaste     bool
	pasteBuffer strings.Builder
}

// New creates a backend on the attached terminal, with the color depth
// probed from the environment.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBackendUnavailable, "no usable terminal").
			WithRemediation("run inside an interactive terminal with TERM set")
	}
	return &Backend{
		screen:      screen,
		mode:        backend.DetectColorMode(),
		cursorStyle: backend.CursorBlock,
	}, nil
}

// NewWithScreen creates a backend over an existing tcell screen. Used by
// the sim backend and tests; colors pass through at full depth.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		screen:      screen,
		mode:        backend.ColorTrue,
		cursorStyle: backend.CursorBlock,
	}
}

// SetColorMode overrides the probed color depth.
func (b *Backend) SetColorMode(mode backend.ColorMode) {
	b.mode = mode
}

// ColorMode returns the active color depth.
func (b *Backend) ColorMode() backend.ColorMode {
	return b.mode
}

// Init initializes the terminal.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return errors.Wrap(err, errors.ErrCodeBackendInit, "terminal init failed")
	}
	return nil
}

// Fini restores the terminal.
func (b *Backend) Fini() {
	b.screen.Fini()
}

// Size returns the terminal dimensions.
func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

// SetCell stages one cell. Colors are degraded to the terminal's depth;
// fully transparent colors map to the terminal default.
func (b *Backend) SetCell(x, y int, cell buffer.Cell) {
	b.screen.SetContent(x, y, cell.Char, nil, b.styleFor(cell))
}

// Show flushes staged cells to the terminal.
func (b *Backend) Show() {
	b.screen.Show()
}

// Sync forces a full repaint on the next Show.
func (b *Backend) Sync() {
	b.screen.Sync()
}

// Clear blanks the staged screen.
func (b *Backend) Clear() {
	b.screen.Clear()
}

// SetCursor positions the hardware cursor.
func (b *Backend) SetCursor(x, y int, visible bool) {
	if visible {
		b.screen.ShowCursor(x, y)
	} else {
		b.screen.HideCursor()
	}
}

// SetCursorStyle selects the cursor shape and blink state.
func (b *Backend) SetCursorStyle(style backend.CursorStyle, blinking bool) {
	b.cursorStyle = style
	b.cursorBlink = blinking
	b.applyCursor()
}

// SetCursorColor tints the cursor.
func (b *Backend) SetCursorColor(c color.RGBA) {
	b.cursorColor = &c
	b.applyCursor()
}

func (b *Backend) applyCursor() {
	var cs tcell.CursorStyle
	switch b.cursorStyle {
	case backend.CursorUnderline:
		if b.cursorBlink {
			cs = tcell.CursorStyleBlinkingUnderline
		} else {
			cs = tcell.CursorStyleSteadyUnderline
		}
	case backend.CursorBar:
		if b.cursorBlink {
			cs = tcell.CursorStyleBlinkingBar
		} else {
			cs = tcell.CursorStyleSteadyBar
		}
	default:
		if b.cursorBlink {
			cs = tcell.CursorStyleBlinkingBlock
		} else {
			cs = tcell.CursorStyleSteadyBlock
		}
	}
	if b.cursorColor != nil {
		b.screen.SetCursorStyle(cs, b.convertColor(*b.cursorColor))
	} else {
		b.screen.SetCursorStyle(cs)
	}
}

// EnableMouse turns on mouse reporting.
func (b *Backend) EnableMouse(motion bool) {
	flags := tcell.MouseButtonEvents | tcell.MouseDragEvents
	if motion {
		flags |= tcell.MouseMotionEvents
	}
	b.screen.EnableMouse(flags)
}

// DisableMouse turns off mouse reporting.
func (b *Backend) DisableMouse() {
	b.screen.DisableMouse()
}

// EnablePaste turns on bracketed paste reporting.
func (b *Backend) EnablePaste() {
	b.screen.EnablePaste()
}

// DisablePaste turns off bracketed paste reporting.
func (b *Backend) DisablePaste() {
	b.screen.DisablePaste()
}

// SetTitle sets the terminal window title.
func (b *Backend) SetTitle(title string) {
	b.screen.SetTitle(title)
}

// Beep emits an audible bell.
func (b *Backend) Beep() {
	b.screen.Beep()
}

// PollEvent blocks for the next event. Paste sequences are accumulated
// into a single PasteEvent; mouse button transitions are decoded into
// down, up, and move events.
func (b *Backend) PollEvent() input.Event {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventPaste:
			if e.Start() {
				b.inPaste = true
				b.pasteBuffer.Reset()
				continue
			}
			if e.End() {
				b.inPaste = false
				text := b.pasteBuffer.String()
				b.pasteBuffer.Reset()
				if text != "" {
					return input.PasteEvent{Text: text}
				}
				continue
			}

		case *tcell.EventKey:
			if b.inPaste {
				switch e.Key() {
				case tcell.KeyRune:
					b.pasteBuffer.WriteRune(e.Rune())
				case tcell.KeyEnter:
					b.pasteBuffer.WriteRune('\n')
				case tcell.KeyTab:
					b.pasteBuffer.WriteRune('\t')
				}
				continue
			}
			return convertKey(e)

		case *tcell.EventMouse:
			if out, ok := b.convertMouse(e); ok {
				return out
			}
			continue

		case *tcell.EventResize:
			w, h := e.Size()
			return input.ResizeEvent{Width: w, Height: h}
		}
	}
}

// PostEvent injects an event into the queue.
func (b *Backend) PostEvent(ev input.Event) error {
	switch e := ev.(type) {
	case input.ResizeEvent:
		return b.screen.PostEvent(tcell.NewEventResize(e.Width, e.Height))
	default:
		return nil
	}
}

// Suspend releases the terminal.
func (b *Backend) Suspend() error {
	return b.screen.Suspend()
}

// Resume reclaims the terminal.
func (b *Backend) Resume() error {
	return b.screen.Resume()
}

// styleFor converts a composited cell to a tcell style. Hidden text is
// emulated by painting the foreground with the background color.
func (b *Backend) styleFor(cell buffer.Cell) tcell.Style {
	fg, bg := cell.Foreground, cell.Background
	if cell.Attributes&buffer.AttrHidden != 0 {
		fg = bg
	}

	style := tcell.StyleDefault.
		Foreground(b.convertColor(fg)).
		Background(b.convertColor(bg))

	if cell.Attributes&buffer.AttrBold != 0 {
		style = style.Bold(true)
	}
	if cell.Attributes&buffer.AttrDim != 0 {
		style = style.Dim(true)
	}
	if cell.Attributes&buffer.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if cell.Attributes&buffer.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if cell.Attributes&buffer.AttrBlink != 0 {
		style = style.Blink(true)
	}
	if cell.Attributes&buffer.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	if cell.Attributes&buffer.AttrStrike != 0 {
		style = style.StrikeThrough(true)
	}

	return style
}

// convertColor degrades an RGBA color to the terminal's depth. Fully
// transparent means the terminal default.
func (b *Backend) convertColor(c color.RGBA) tcell.Color {
	if c.A <= 0 {
		return tcell.ColorDefault
	}
	switch b.mode {
	case backend.ColorTrue:
		return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
	case backend.Color256, backend.Color16:
		if idx, ok := backend.PaletteIndex(c, b.mode); ok {
			return tcell.PaletteColor(idx)
		}
		return tcell.ColorDefault
	default:
		return tcell.ColorDefault
	}
}

func channel(v float32) int32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int32(v*255 + 0.5)
}

// convertMouse decodes a tcell mouse event against the previous button
// state. Wheel ticks arrive as instantaneous presses.
func (b *Backend) convertMouse(e *tcell.EventMouse) (input.MouseEvent, bool) {
	x, y := e.Position()
	mods := convertMods(e.Modifiers())
	btns := e.Buttons()

	if btns&tcell.WheelUp != 0 {
		return input.MouseEvent{Type: input.MouseDown, X: x, Y: y, Button: input.MouseWheelUp, Mods: mods}, true
	}
	if btns&tcell.WheelDown != 0 {
		return input.MouseEvent{Type: input.MouseDown, X: x, Y: y, Button: input.MouseWheelDown, Mods: mods}, true
	}

	state := btns & buttonBits
	pressed := state &^ b.lastButtons
	released := b.lastButtons &^ state
	b.lastButtons = state

	switch {
	case pressed != 0:
		return input.MouseEvent{Type: input.MouseDown, X: x, Y: y, Button: convertButton(pressed), Mods: mods}, true
	case released != 0:
		return input.MouseEvent{Type: input.MouseUp, X: x, Y: y, Button: convertButton(released), Mods: mods}, true
	default:
		return input.MouseEvent{Type: input.MouseMove, X: x, Y: y, Button: convertButton(state), Mods: mods}, true
	}
}

// convertButton picks the highest-priority button from a mask.
func convertButton(buttons tcell.ButtonMask) input.MouseButton {
	switch {
	case buttons&tcell.Button1 != 0:
		return input.MouseLeft
	case buttons&tcell.Button2 != 0:
		return input.MouseMiddle
	case buttons&tcell.Button3 != 0:
		return input.MouseRight
	default:
		return input.MouseNone
	}
}

func convertMods(m tcell.ModMask) input.Modifiers {
	var mods input.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= input.ModShift
	}
	if m&tcell.ModAlt != 0 {
		mods |= input.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		mods |= input.ModCtrl
	}
	return mods
}

// convertKey maps a tcell key event to the engine's key vocabulary.
func convertKey(e *tcell.EventKey) input.KeyEvent {
	mods := convertMods(e.Modifiers())

	if e.Key() == tcell.KeyRune {
		r := e.Rune()
		return input.KeyEvent{Name: string(r), Rune: r, Mods: mods}
	}

	if name, ok := keyNames[e.Key()]; ok {
		return input.KeyEvent{Name: name, Mods: mods}
	}

	// Remaining control keys: ctrl+a .. ctrl+z, minus the keys that have
	// their own names above (tab, enter, backspace).
	if k := e.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return input.KeyEvent{
			Name: "ctrl+" + string(rune('a'+k-tcell.KeyCtrlA)),
			Mods: mods | input.ModCtrl,
		}
	}

	return input.KeyEvent{Name: "unknown", Mods: mods}
}

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "backtab",
	tcell.KeyEscape:     "escape",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
	tcell.KeyInsert:     "insert",
	tcell.KeyDelete:     "delete",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
