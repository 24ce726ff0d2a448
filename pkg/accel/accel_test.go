package accel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/errors"
)

type fakeSurface struct {
	width, height int
	ops           []string
	presented     int
	closed        bool
	failPresent   bool
}

var _ Surface = (*fakeSurface)(nil)

func (f *fakeSurface) Resize(w, h int) error {
	f.width, f.height = w, h
	f.ops = append(f.ops, fmt.Sprintf("resize %dx%d", w, h))
	return nil
}

func (f *fakeSurface) Clear(bg color.RGBA) {
	f.ops = append(f.ops, "clear")
}

func (f *fakeSurface) SetCell(x, y int, c buffer.Cell) {
	f.ops = append(f.ops, fmt.Sprintf("set %d,%d %c", x, y, c.Char))
}

func (f *fakeSurface) SetBlended(x, y int, char rune, fg, bg color.RGBA, attrs uint8) {
	f.ops = append(f.ops, fmt.Sprintf("blend %d,%d %c", x, y, char))
}

func (f *fakeSurface) FillRect(x, y, w, h int, bg color.RGBA) {
	f.ops = append(f.ops, fmt.Sprintf("fill %d,%d %dx%d", x, y, w, h))
}

func (f *fakeSurface) DrawBuffer(destX, destY int, src *buffer.Buffer) {
	// Reads the raw planes the way a native provider would.
	f.ops = append(f.ops, fmt.Sprintf("draw %d,%d cells=%d", destX, destY, len(src.Chars())))
}

func (f *fakeSurface) Present() error {
	if f.failPresent {
		return fmt.Errorf("present failed")
	}
	f.presented++
	return nil
}

func (f *fakeSurface) Close() error {
	f.closed = true
	return nil
}

func TestNew_Unregistered(t *testing.T) {
	Register(nil)

	if Registered() {
		t.Fatal("Registered() = true with no factory installed")
	}

	s, err := New(80, 24)
	if err == nil {
		t.Fatal("New() succeeded with no factory installed")
	}
	if s != nil {
		t.Errorf("New() returned non-nil surface alongside error")
	}
	if !errors.IsCode(err, errors.ErrCodeAccelUnavailable) {
		t.Errorf("New() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeAccelUnavailable)
	}
}

func TestRegisterAndNew(t *testing.T) {
	t.Cleanup(func() { Register(nil) })

	var created *fakeSurface
	Register(func(w, h int) (Surface, error) {
		created = &fakeSurface{width: w, height: h}
		return created, nil
	})

	if !Registered() {
		t.Fatal("Registered() = false after Register")
	}

	s, err := New(80, 24)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if created == nil || created.width != 80 || created.height != 24 {
		t.Fatalf("factory received %+v, want 80x24", created)
	}

	src, err := buffer.New(4, 2)
	if err != nil {
		t.Fatalf("buffer.New() error = %v", err)
	}

	s.SetCell(1, 0, buffer.Cell{Char: 'x', Foreground: color.White, Background: color.Black})
	s.SetBlended(2, 0, 'y', color.White, color.RGBA{R: 1, A: 0.5}, 0)
	s.FillRect(0, 1, 4, 1, color.Black)
	s.DrawBuffer(0, 0, src)
	if err := s.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := []string{"set 1,0 x", "blend 2,0 y", "fill 0,1 4x1", "draw 0,0 cells=8"}
	if len(created.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", created.ops, want)
	}
	for i, op := range want {
		if created.ops[i] != op {
			t.Errorf("ops[%d] = %q, want %q", i, created.ops[i], op)
		}
	}
	if created.presented != 1 {
		t.Errorf("presented = %d, want 1", created.presented)
	}
	if !created.closed {
		t.Errorf("surface not closed")
	}
}

func TestNew_FactoryError(t *testing.T) {
	t.Cleanup(func() { Register(nil) })

	Register(func(w, h int) (Surface, error) {
		return nil, fmt.Errorf("no device")
	})

	_, err := New(10, 5)
	if err == nil {
		t.Fatal("New() succeeded with a failing factory")
	}
	if !errors.IsCode(err, errors.ErrCodeAccelUnavailable) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeAccelUnavailable)
	}
	if !strings.Contains(err.Error(), "no device") {
		t.Errorf("error %q does not mention the factory cause", err.Error())
	}
}

func TestRegister_LastWins(t *testing.T) {
	t.Cleanup(func() { Register(nil) })

	Register(func(w, h int) (Surface, error) {
		return nil, fmt.Errorf("stale factory")
	})
	Register(func(w, h int) (Surface, error) {
		return &fakeSurface{width: w, height: h}, nil
	})

	s, err := New(5, 5)
	if err != nil {
		t.Fatalf("New() error = %v, want replacement factory to win", err)
	}
	if s == nil {
		t.Fatal("New() returned nil surface")
	}
}
