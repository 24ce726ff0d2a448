package engine

import (
	"fmt"
	"time"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/config"
	"github.com/okanek/tessera/pkg/logging"
	"github.com/okanek/tessera/pkg/scene"
)

// Stats is a snapshot of the frame counters after the last Render.
type Stats struct {
	Frames       uint64
	FrameTime    time.Duration
	CallbackTime time.Duration
	FPS          float64
	Nodes        int
	Cells        int
}

// Stats returns the counters from the last rendered frame.
func (r *Renderer) Stats() Stats { return r.stats }

// AddFrameCallback registers fn to run at the start of every frame with
// the time elapsed since the previous one. Callbacks run on the frame
// goroutine before the tree draws and may draw into GetNextBuffer.
// Registering one switches Run to continuous rendering.
func (r *Renderer) AddFrameCallback(fn func(dt time.Duration)) {
	if fn != nil {
		r.frameCallbacks = append(r.frameCallbacks, fn)
	}
}

// Render produces and presents one frame: clear the working buffer, run
// frame callbacks, traverse the tree (which rebuilds the hit grid),
// draw the overlay, present the difference, then swap buffers.
func (r *Renderer) Render(dt time.Duration) {
	start := time.Now()
	r.repaint = false
	r.frame++
	r.log.SetFrame(r.frame)

	r.next.Clear(r.background)

	var cbTime time.Duration
	if len(r.frameCallbacks) > 0 {
		cbStart := time.Now()
		for _, fn := range r.frameCallbacks {
			fn(dt)
		}
		cbTime = time.Since(cbStart)
	}

	r.hits.Clear()
	r.frameNodes = 0
	scene.RenderTree(r.root, r.next, dt)

	if r.opts.DebugOverlay.Enabled {
		r.drawOverlay()
	}

	cells := r.present()

	r.next, r.current = r.current, r.next

	r.finishFrame(start, cbTime, cells)
}

// present pushes the finished frame out: through the accelerated
// surface when one is attached, else by diffing against the last
// presented buffer and emitting only changed cells.
func (r *Renderer) present() int {
	if r.surface != nil && r.presentSurface() {
		return r.width * r.height
	}
	return r.presentDiff()
}

// presentSurface hands the whole frame to the accelerated surface. A
// present failure detaches the surface for good and reports false so
// the same frame still reaches the terminal through the buffer path.
func (r *Renderer) presentSurface() bool {
	r.surface.DrawBuffer(0, 0, r.next)
	if err := r.surface.Present(); err != nil {
		r.log.Warn(logging.CategoryAccel, "fallback", "surface present failed, using buffer present path", map[string]any{
			"error": err.Error(),
		})
		_ = r.surface.Close()
		r.surface = nil
		r.full = true
		return false
	}
	return true
}

func (r *Renderer) presentDiff() int {
	nextChars := r.next.Chars()
	nextFg := r.next.Foreground()
	nextBg := r.next.Background()
	nextAttrs := r.next.Attributes()
	curChars := r.current.Chars()
	curFg := r.current.Foreground()
	curBg := r.current.Background()
	curAttrs := r.current.Attributes()

	emitted := 0
	for y := 0; y < r.height; y++ {
		row := y * r.width
		for x := 0; x < r.width; x++ {
			i := row + x
			if !r.full &&
				nextChars[i] == curChars[i] &&
				nextFg[i] == curFg[i] &&
				nextBg[i] == curBg[i] &&
				nextAttrs[i] == curAttrs[i] {
				continue
			}
			r.backend.SetCell(x, y, buffer.Cell{
				Char:       nextChars[i],
				Foreground: nextFg[i],
				Background: nextBg[i],
				Attributes: nextAttrs[i],
			})
			emitted++
			// A wide glyph owns the following cell; writing that cell
			// would split the glyph.
			if runewidth.RuneWidth(nextChars[i]) > 1 {
				x++
			}
		}
	}
	r.full = false
	r.backend.Show()
	return emitted
}

// drawOverlay paints the previous frame's stats into the configured
// corner of the working buffer, on top of the scene.
func (r *Renderer) drawOverlay() {
	s := r.stats
	lines := []string{
		fmt.Sprintf(" fps %5.1f ", s.FPS),
		fmt.Sprintf(" frame %6.2fms ", float64(s.FrameTime.Microseconds())/1000),
		fmt.Sprintf(" nodes %d cells %d ", s.Nodes, s.Cells),
	}
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}

	x, y := 0, 0
	switch r.opts.DebugOverlay.Corner {
	case config.CornerTopLeft:
	case config.CornerTopRight:
		x = r.width - width
	case config.CornerBottomLeft:
		y = r.height - len(lines)
	default:
		x = r.width - width
		y = r.height - len(lines)
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	bg := color.Black
	for i, line := range lines {
		for len(line) < width {
			line += " "
		}
		r.next.DrawText(line, x, y+i, color.White, &bg, 0, nil)
	}
}

func (r *Renderer) finishFrame(start time.Time, cbTime time.Duration, cells int) {
	now := time.Now()
	frameTime := now.Sub(start)

	if interval := now.Sub(r.lastFrame).Seconds(); interval > 0 {
		if r.frameEMA == 0 {
			r.frameEMA = interval
		} else {
			r.frameEMA = r.frameEMA*0.9 + interval*0.1
		}
	}
	r.lastFrame = now

	fps := 0.0
	if r.frameEMA > 0 {
		fps = 1 / r.frameEMA
	}

	r.stats = Stats{
		Frames:       r.frame,
		FrameTime:    frameTime,
		CallbackTime: cbTime,
		FPS:          fps,
		Nodes:        r.frameNodes,
		Cells:        cells,
	}

	r.metrics.FramesRendered.Inc()
	r.metrics.CellsPresented.Add(int64(cells))
	r.metrics.FrameTime.ObserveDuration(frameTime)
	r.metrics.CallbackTime.ObserveDuration(cbTime)
	r.metrics.FPS.Set(int64(fps + 0.5))
	r.metrics.NodesRendered.Set(int64(r.frameNodes))
	if r.prom != nil {
		r.prom.ObserveFrame(frameTime, fps, r.frameNodes, cells)
	}
}
