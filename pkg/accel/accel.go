// Package accel defines the seam for externally accelerated cell-grid
// surfaces. A Surface mirrors the buffer operations over the same wire
// contract (one codepoint, two RGBA colors, and one attribute byte per
// cell) so the renderer can route frames through either implementation
// without visible differences. Providers register a Factory at init time;
// when none is registered, or the factory fails, the renderer stays on
// the in-process buffer path.
package accel

import (
	"sync"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/errors"
)

// Surface is an accelerated implementation of the cell-grid operations.
// Signatures mirror buffer.Buffer. Composite drawing (text runs, boxes)
// happens in the scene buffer and reaches a surface as whole frames via
// DrawBuffer, which reads the source's raw planes.
type Surface interface {
	// Resize reallocates the grid. Contents are undefined afterward and
	// callers redraw, matching buffer.Resize.
	Resize(width, height int) error

	// Clear fills the whole grid with a space on bg.
	Clear(bg color.RGBA)

	// SetCell writes one cell verbatim, ignoring alpha.
	SetCell(x, y int, c buffer.Cell)

	// SetBlended composites one cell using the perceptual alpha model.
	SetBlended(x, y int, char rune, fg, bg color.RGBA, attrs uint8)

	// FillRect fills the clipped rectangle with bg.
	FillRect(x, y, w, h int, bg color.RGBA)

	// DrawBuffer uploads src at an offset. Implementations read the
	// source planes (Chars, Foreground, Background, Attributes) directly.
	DrawBuffer(destX, destY int, src *buffer.Buffer)

	// Present flushes the surface to the terminal.
	Present() error

	// Close releases the surface and any native resources behind it.
	Close() error
}

// Factory creates a Surface at an initial size.
type Factory func(width, height int) (Surface, error)

var (
	mu      sync.RWMutex
	factory Factory
)

// Register installs the process-wide surface factory. The last
// registration wins; Register(nil) removes the factory.
func Register(f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factory = f
}

// Registered reports whether a surface factory is installed.
func Registered() bool {
	mu.RLock()
	defer mu.RUnlock()
	return factory != nil
}

// New creates a surface from the registered factory.
func New(width, height int) (Surface, error) {
	mu.RLock()
	f := factory
	mu.RUnlock()

	if f == nil {
		return nil, errors.New(errors.ErrCodeAccelUnavailable, "no accelerated surface registered").
			WithRemediation(
				"import a surface provider package for its Register side effect",
				"or clear use_accelerated in the engine options",
			)
	}

	s, err := f(width, height)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAccelUnavailable, "accelerated surface init failed").
			WithContext("width", width).
			WithContext("height", height)
	}
	return s, nil
}
