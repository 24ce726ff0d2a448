package sim

import (
	"strings"
	"testing"
	"time"

	tcellv2 "github.com/gdamore/tcell/v2"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/input"
)

func cell(r rune, fg, bg color.RGBA, attrs uint8) buffer.Cell {
	return buffer.Cell{Char: r, Foreground: fg, Background: bg, Attributes: attrs}
}

// pollOne reads one event with a timeout, skipping the test if the
// simulation does not deliver.
func pollOne(t *testing.T, sim *Backend) input.Event {
	t.Helper()
	done := make(chan input.Event, 1)
	go func() {
		done <- sim.PollEvent()
	}()
	select {
	case ev := <-done:
		if ev == nil {
			t.Skip("no event received from simulation screen")
		}
		return ev
	case <-time.After(500 * time.Millisecond):
		t.Skip("PollEvent blocked on simulation screen")
		return nil
	}
}

// pollInput reads the next key or mouse event, stepping over the resize
// events a screen may emit on startup.
func pollInput(t *testing.T, sim *Backend) input.Event {
	t.Helper()
	for i := 0; i < 4; i++ {
		ev := pollOne(t, sim)
		if _, isResize := ev.(input.ResizeEvent); !isResize {
			return ev
		}
	}
	t.Fatal("only resize events received")
	return nil
}

func TestBackend_BasicRendering(t *testing.T) {
	sim := New(20, 5)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	for i, r := range "Hello, World!" {
		sim.SetCell(i, 0, cell(r, color.White, color.Transparent, 0))
	}
	sim.Show()

	capture := sim.Capture()
	lines := strings.Split(capture, "\n")
	if _, h := sim.Size(); len(lines) != h {
		t.Errorf("expected %d lines, got %d", h, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Hello, World!") {
		t.Errorf("expected first line to start with greeting, got %q", lines[0])
	}
}

func TestBackend_Resize(t *testing.T) {
	sim := New(80, 24)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	sim.Resize(40, 12)

	w, h := sim.Size()
	if w != 40 || h != 12 {
		t.Errorf("expected 40x12 after resize, got %dx%d", w, h)
	}
}

func TestBackend_FindAndContainsText(t *testing.T) {
	sim := New(40, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	for i, r := range "target" {
		sim.SetCell(5+i, 3, cell(r, color.White, color.Transparent, 0))
	}
	sim.Show()

	if x, y := sim.FindText("target"); x != 5 || y != 3 {
		t.Errorf("expected 'target' at (5, 3), got (%d, %d)", x, y)
	}
	if x, y := sim.FindText("missing"); x != -1 || y != -1 {
		t.Errorf("expected (-1, -1) for missing text, got (%d, %d)", x, y)
	}
	if !sim.ContainsText("target") {
		t.Error("ContainsText failed to see rendered text")
	}
	if sim.ContainsText("nothere") {
		t.Error("ContainsText reported absent text")
	}
}

func TestBackend_CaptureRegion(t *testing.T) {
	sim := New(20, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			sim.SetCell(x, y, cell('X', color.White, color.Transparent, 0))
		}
	}
	sim.Show()

	region := sim.CaptureRegion(0, 0, 5, 3)
	expected := "XXXXX\nXXXXX\nXXXXX"
	if region != expected {
		t.Errorf("expected region:\n%s\ngot:\n%s", expected, region)
	}
}

func TestBackend_CellColorsRoundTrip(t *testing.T) {
	sim := New(10, 3)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	red := color.NewRGB(1, 0, 0)
	blue := color.NewRGB(0, 0, 1)
	sim.SetCell(2, 1, cell('S', red, blue, 0))
	sim.Show()

	r, fg, bg := sim.CaptureCell(2, 1)
	if r != 'S' {
		t.Errorf("expected 'S', got %c", r)
	}
	if !fg.NearlyEqual(red, 0.01) {
		t.Errorf("foreground not preserved: %+v", fg)
	}
	if !bg.NearlyEqual(blue, 0.01) {
		t.Errorf("background not preserved: %+v", bg)
	}
}

func TestBackend_TransparentMapsToDefault(t *testing.T) {
	sim := New(10, 3)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	sim.SetCell(0, 0, cell('d', color.White, color.Transparent, 0))
	sim.Show()

	_, _, bg := sim.CaptureCell(0, 0)
	if bg.A != 0 {
		t.Errorf("transparent background should read back as terminal default, got %+v", bg)
	}
}

func TestBackend_HiddenAttrPaintsForegroundAsBackground(t *testing.T) {
	sim := New(10, 3)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	blue := color.NewRGB(0, 0, 1)
	sim.SetCell(0, 0, cell('x', color.White, blue, buffer.AttrHidden))
	sim.Show()

	_, fg, bg := sim.CaptureCell(0, 0)
	if !fg.NearlyEqual(bg, 0.01) {
		t.Errorf("hidden cell should draw fg=bg, got fg=%+v bg=%+v", fg, bg)
	}
}

func TestBackend_InjectKeyRune(t *testing.T) {
	sim := New(20, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	sim.InjectKeyRune('a')

	ev := pollInput(t, sim)
	key, ok := ev.(input.KeyEvent)
	if !ok {
		t.Fatalf("expected input.KeyEvent, got %T", ev)
	}
	if key.Name != "a" || key.Rune != 'a' {
		t.Errorf("expected rune key 'a', got name=%q rune=%q", key.Name, key.Rune)
	}
}

func TestBackend_InjectSpecialKey(t *testing.T) {
	sim := New(20, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	sim.InjectKey(tcellv2.KeyEnter, tcellv2.ModNone)

	ev := pollInput(t, sim)
	key, ok := ev.(input.KeyEvent)
	if !ok {
		t.Fatalf("expected input.KeyEvent, got %T", ev)
	}
	if key.Name != "enter" {
		t.Errorf("expected name 'enter', got %q", key.Name)
	}
}

func TestBackend_MouseTransitions(t *testing.T) {
	sim := New(20, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	sim.InjectMouseDown(3, 2)
	sim.InjectMouseMove(4, 2, true)
	sim.InjectMouseUp(4, 2)

	want := []struct {
		typ input.EventType
		x   int
	}{
		{input.MouseDown, 3},
		{input.MouseMove, 4},
		{input.MouseUp, 4},
	}
	for i, expect := range want {
		ev := pollInput(t, sim)
		mouse, ok := ev.(input.MouseEvent)
		if !ok {
			t.Fatalf("event %d: expected input.MouseEvent, got %T", i, ev)
		}
		if mouse.Type != expect.typ {
			t.Errorf("event %d: expected type %v, got %v", i, expect.typ, mouse.Type)
		}
		if mouse.X != expect.x || mouse.Y != 2 {
			t.Errorf("event %d: expected position (%d, 2), got (%d, %d)", i, expect.x, mouse.X, mouse.Y)
		}
	}
}

func TestBackend_PostResize(t *testing.T) {
	sim := New(20, 10)
	if err := sim.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sim.Fini()

	if err := sim.PostEvent(input.ResizeEvent{Width: 50, Height: 20}); err != nil {
		t.Fatalf("PostEvent failed: %v", err)
	}

	// A startup resize may precede the posted one.
	for i := 0; i < 4; i++ {
		ev := pollOne(t, sim)
		resize, ok := ev.(input.ResizeEvent)
		if !ok {
			t.Fatalf("expected input.ResizeEvent, got %T", ev)
		}
		if resize.Width == 50 && resize.Height == 20 {
			return
		}
	}
	t.Fatal("posted resize event never arrived")
}
