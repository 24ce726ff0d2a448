// Package sim provides an in-memory backend for tests, wrapping tcell's
// simulation screen with injection and capture helpers.
package sim

import (
	"strings"
	"sync"

	tcellv2 "github.com/gdamore/tcell/v2"

	"github.com/okanek/tessera/pkg/backend"
	"github.com/okanek/tessera/pkg/backend/tcell"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/input"
)

// Backend is a testable backend using tcell's simulation screen.
type Backend struct {
	*tcell.Backend
	screen        tcellv2.SimulationScreen
	width, height int
	mu            sync.Mutex
}

// New creates a simulation backend with the given dimensions.
func New(width, height int) *Backend {
	screen := tcellv2.NewSimulationScreen("")
	screen.SetSize(width, height)

	return &Backend{
		Backend: tcell.NewWithScreen(screen),
		screen:  screen,
		width:   width,
		height:  height,
	}
}

// Init initializes the screen and reapplies the constructed size, which
// tcell's simulation resets to its own default during Init.
func (s *Backend) Init() error {
	if err := s.Backend.Init(); err != nil {
		return err
	}
	s.mu.Lock()
	s.screen.SetSize(s.width, s.height)
	s.mu.Unlock()
	return nil
}

// Resize changes the simulated terminal size.
func (s *Backend) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.screen.SetSize(width, height)
}

// InjectResize resizes the simulated terminal and queues the matching
// resize event.
func (s *Backend) InjectResize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.screen.SetSize(width, height)
	s.mu.Unlock()
	s.PostEvent(input.ResizeEvent{Width: width, Height: height})
}

// InjectKeyRune queues a printable keypress.
func (s *Backend) InjectKeyRune(r rune) {
	s.screen.InjectKey(tcellv2.KeyRune, r, tcellv2.ModNone)
}

// InjectKeyString queues a string as a sequence of keypresses.
func (s *Backend) InjectKeyString(str string) {
	for _, r := range str {
		s.InjectKeyRune(r)
	}
}

// InjectKey queues a special key by tcell key code.
func (s *Backend) InjectKey(key tcellv2.Key, mods tcellv2.ModMask) {
	s.screen.InjectKey(key, 0, mods)
}

// InjectMouseDown queues a left button press at (x, y).
func (s *Backend) InjectMouseDown(x, y int) {
	s.screen.InjectMouse(x, y, tcellv2.Button1, tcellv2.ModNone)
}

// InjectMouseMove queues a motion event at (x, y) with the current
// button state held.
func (s *Backend) InjectMouseMove(x, y int, held bool) {
	buttons := tcellv2.ButtonNone
	if held {
		buttons = tcellv2.Button1
	}
	s.screen.InjectMouse(x, y, buttons, tcellv2.ModNone)
}

// InjectMouseUp queues a button release at (x, y).
func (s *Backend) InjectMouseUp(x, y int) {
	s.screen.InjectMouse(x, y, tcellv2.ButtonNone, tcellv2.ModNone)
}

// Capture returns the displayed characters as one string per row.
func (s *Backend) Capture() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.screen.Size()
	var lines []string

	for y := 0; y < h; y++ {
		var line strings.Builder
		for x := 0; x < w; x++ {
			mainc, comb, _, _ := s.screen.GetContent(x, y)
			if mainc == 0 {
				mainc = ' '
			}
			line.WriteRune(mainc)
			for _, c := range comb {
				line.WriteRune(c)
			}
		}
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

// CaptureRegion returns the characters of a rectangular region.
func (s *Backend) CaptureRegion(x, y, w, h int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []string
	for row := y; row < y+h; row++ {
		var line strings.Builder
		for col := x; col < x+w; col++ {
			mainc, _, _, _ := s.screen.GetContent(col, row)
			if mainc == 0 {
				mainc = ' '
			}
			line.WriteRune(mainc)
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// CaptureCell returns the character and colors displayed at one cell.
// Terminal-default colors come back fully transparent.
func (s *Backend) CaptureCell(x, y int) (r rune, fg, bg color.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mainc, _, style, _ := s.screen.GetContent(x, y)
	if mainc == 0 {
		mainc = ' '
	}
	sfg, sbg, _ := style.Decompose()
	return mainc, convertTcellColor(sfg), convertTcellColor(sbg)
}

// FindText searches the display for text and returns its cell position,
// or (-1, -1) when absent.
func (s *Backend) FindText(text string) (x, y int) {
	capture := s.Capture()
	for row, line := range strings.Split(capture, "\n") {
		if col := strings.Index(line, text); col >= 0 {
			return col, row
		}
	}
	return -1, -1
}

// ContainsText reports whether text appears anywhere on the display.
func (s *Backend) ContainsText(text string) bool {
	x, y := s.FindText(text)
	return x >= 0 && y >= 0
}

func convertTcellColor(tc tcellv2.Color) color.RGBA {
	if tc == tcellv2.ColorDefault {
		return color.Transparent
	}
	r, g, b := tc.TrueColor().RGB()
	return color.FromInts(uint8(r), uint8(g), uint8(b), 255)
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
