// Package engine ties the pieces together: a Renderer owns the scene
// tree, a pair of cell buffers, the hit grid, the selection controller,
// and a terminal backend, and turns node mutations into presented
// frames at a paced rate.
//
// The Renderer and the tree it owns belong to one goroutine. Run drives
// everything from its frame goroutine; hosts on other goroutines reach
// the tree through Do. Hosts that call Render and HandleEvent themselves
// must stay on a single goroutine as well.
package engine

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/okanek/tessera/pkg/accel"
	"github.com/okanek/tessera/pkg/backend"
	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/config"
	"github.com/okanek/tessera/pkg/errors"
	"github.com/okanek/tessera/pkg/input"
	"github.com/okanek/tessera/pkg/logging"
	"github.com/okanek/tessera/pkg/scene"
	"github.com/okanek/tessera/pkg/selection"
	"github.com/okanek/tessera/pkg/telemetry"
)

const funcBuffer = 64

// Config assembles a Renderer. Backend is required; everything else has
// a usable zero value.
type Config struct {
	// Backend is the uninitialized terminal backend the renderer will
	// own. New calls Init on it and Close calls Fini.
	Backend backend.Backend

	// Options carries the engine options, normally from pkg/config. A
	// TargetFPS below the valid range falls back to the default rate.
	Options config.Options

	// Logger receives diagnostics. Nil stays quiet.
	Logger *logging.Logger

	// Metrics receives the frame metric set when non-nil.
	Metrics *telemetry.Registry

	// Prom mirrors per-frame observations to a Prometheus exporter.
	Prom *telemetry.PromExporter
}

// Renderer is the engine core: a retained scene tree presented to a
// terminal through double-buffered frames with per-cell diffing.
type Renderer struct {
	backend backend.Backend
	opts    config.Options
	log     *logging.Logger

	registry *scene.Registry
	root     *scene.Group
	hits     *scene.HitGrid

	next    *buffer.Buffer // drawn into this frame
	current *buffer.Buffer // last presented, never written
	width   int
	height  int

	background color.RGBA
	full       bool // next present emits every cell
	repaint    bool

	sel     *selection.Controller
	pointer input.Pointer

	surface accel.Surface
	limiter *rate.Limiter
	funcs   chan func()

	keyHandler     func(input.KeyEvent)
	pasteHandler   func(input.PasteEvent)
	resizeHandler  func(width, height int)
	frameCallbacks []func(dt time.Duration)

	metrics   *telemetry.FrameMetrics
	prom      *telemetry.PromExporter
	stats     Stats
	frame     uint64
	frameEMA  float64 // smoothed seconds between frames
	lastFrame time.Time

	frameNodes int

	closeOnce sync.Once
}

// New initializes the backend, sizes the frame buffers to the terminal,
// and builds the tree root. The caller owns the returned renderer and
// must Close it (Run does both the driving and the closing).
func New(cfg Config) (*Renderer, error) {
	if cfg.Backend == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "engine requires a backend")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	opts := cfg.Options
	if opts.TargetFPS < config.MinTargetFPS {
		opts.TargetFPS = config.DefaultTargetFPS
	}

	if err := cfg.Backend.Init(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBackendInit, "backend init failed")
	}

	w, h := cfg.Backend.Size()
	next, err := buffer.New(w, h)
	if err != nil {
		cfg.Backend.Fini()
		return nil, err
	}
	current, err := buffer.New(w, h)
	if err != nil {
		cfg.Backend.Fini()
		return nil, err
	}
	method := opts.BufferWidthMethod()
	next.SetWidthMethod(method)
	current.SetWidthMethod(method)

	r := &Renderer{
		backend:    cfg.Backend,
		opts:       opts,
		log:        log,
		registry:   scene.NewRegistry(),
		hits:       scene.NewHitGrid(w, h),
		next:       next,
		current:    current,
		width:      w,
		height:     h,
		background: opts.BackgroundRGBA(),
		full:       true,
		repaint:    true,
		limiter:    rate.NewLimiter(rate.Limit(opts.TargetFPS), 1),
		funcs:      make(chan func(), funcBuffer),
		metrics:    telemetry.NewFrameMetrics(cfg.Metrics),
		prom:       cfg.Prom,
		lastFrame:  time.Now(),
	}

	r.root = scene.NewGroup(r.registry, "root")
	r.root.SetSize(w, h)
	r.root.SetContext(&renderContext{r: r})

	r.sel = selection.NewController(r.selectionTargets)

	r.next.Clear(r.background)
	r.current.Clear(r.background)

	if opts.MouseEnabled {
		r.backend.EnableMouse(opts.MouseMotion)
	}
	r.backend.EnablePaste()

	if opts.UseAccelerated {
		r.initSurface(w, h)
	}

	log.Info(logging.CategoryEngine, "start", "renderer initialized", map[string]any{
		"width":  w,
		"height": h,
		"fps":    opts.TargetFPS,
	})
	return r, nil
}

// initSurface tries the registered accelerated surface. Failure is not
// an error for the caller: the renderer keeps the in-process present
// path and records why.
func (r *Renderer) initSurface(w, h int) {
	s, err := accel.New(w, h)
	if err != nil {
		r.log.Warn(logging.CategoryAccel, "fallback", "accelerated surface unavailable, using buffer present path", map[string]any{
			"error": err.Error(),
		})
		return
	}
	r.surface = s
	r.log.Info(logging.CategoryAccel, "attached", "accelerated surface active", nil)
}

// selectionTargets lists the visible selectable nodes for the selection
// controller, so hidden subtrees and nodes with selection switched off
// drop out automatically.
func (r *Renderer) selectionTargets() []selection.Target {
	var out []selection.Target
	scene.Visit(r.root, func(n scene.Node) bool {
		if t, ok := n.(selection.Target); ok && n.Selectable() {
			out = append(out, t)
		}
		return true
	})
	return out
}

// Root returns the tree root every scene hangs from.
func (r *Renderer) Root() *scene.Group { return r.root }

// Registry returns the handle registry nodes for this renderer are
// created against.
func (r *Renderer) Registry() *scene.Registry { return r.registry }

// Selection returns the text selection controller.
func (r *Renderer) Selection() *selection.Controller { return r.sel }

// Size returns the viewport dimensions in cells.
func (r *Renderer) Size() (w, h int) { return r.width, r.height }

// GetNextBuffer returns the buffer the next frame is drawn into. Frame
// callbacks may draw into it directly; it is cleared at the start of
// every frame.
func (r *Renderer) GetNextBuffer() *buffer.Buffer { return r.next }

// GetCurrentBuffer returns the last presented frame. Callers must not
// write into it.
func (r *Renderer) GetCurrentBuffer() *buffer.Buffer { return r.current }

// CheckHit resolves a screen cell to the topmost node handle in the
// last rendered frame, or 0 for empty space.
func (r *Renderer) CheckHit(x, y int) uint32 {
	r.metrics.HitLookups.Inc()
	return r.hits.At(x, y)
}

// lookupHit is the resolver handed to pointer tracking, counted like
// the public path.
func (r *Renderer) lookupHit(x, y int) uint32 { return r.CheckHit(x, y) }

// NodeAt resolves a screen cell to the node itself, or nil.
func (r *Renderer) NodeAt(x, y int) scene.Node {
	return r.registry.Node(r.CheckHit(x, y))
}

// RequestRepaint schedules a frame even if no node marked itself dirty.
func (r *Renderer) RequestRepaint() { r.repaint = true }

// Do schedules fn on the frame goroutine ahead of the next frame. It is
// the one safe way to touch the tree from another goroutine while Run
// is driving the renderer. The queue has a fixed capacity; when it is
// full, which means the frame loop is stopped or starved, the function
// is rejected rather than queued or run in place.
func (r *Renderer) Do(fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case r.funcs <- fn:
		return nil
	default:
		return errors.New(errors.ErrCodePoolExhausted, "frame function queue is full").
			WithContext("capacity", funcBuffer)
	}
}

// Resize adjusts the renderer to new terminal dimensions. Buffer
// contents are undefined afterward; the next frame redraws everything.
func (r *Renderer) Resize(w, h int) error {
	if w == r.width && h == r.height {
		return nil
	}
	if err := r.next.Resize(w, h); err != nil {
		return err
	}
	if err := r.current.Resize(w, h); err != nil {
		return err
	}
	r.width, r.height = w, h
	r.hits.Resize(w, h)
	r.root.SetSize(w, h)

	if r.surface != nil {
		if err := r.surface.Resize(w, h); err != nil {
			r.log.Warn(logging.CategoryAccel, "fallback", "surface resize failed, using buffer present path", map[string]any{
				"error": err.Error(),
			})
			_ = r.surface.Close()
			r.surface = nil
		}
	}

	r.full = true
	r.repaint = true
	r.sel.Rebroadcast()
	r.log.Debug(logging.CategoryEngine, "resize", "viewport resized", map[string]any{
		"width":  w,
		"height": h,
	})
	return nil
}

// EnableMouse turns on mouse reporting, with motion events when motion
// is set.
func (r *Renderer) EnableMouse(motion bool) {
	r.opts.MouseEnabled = true
	r.opts.MouseMotion = motion
	r.backend.EnableMouse(motion)
}

// DisableMouse turns off mouse reporting and drops tracked pointer
// state.
func (r *Renderer) DisableMouse() {
	r.opts.MouseEnabled = false
	r.backend.DisableMouse()
	r.pointer.Reset()
}

// SetBackgroundColor changes the clear color and forces a full repaint.
func (r *Renderer) SetBackgroundColor(c color.RGBA) {
	r.background = c
	r.full = true
	r.repaint = true
}

// SetTitle sets the terminal window title.
func (r *Renderer) SetTitle(title string) { r.backend.SetTitle(title) }

// SetCursorPosition moves the hardware cursor, hiding it when visible
// is false.
func (r *Renderer) SetCursorPosition(x, y int, visible bool) {
	r.backend.SetCursor(x, y, visible)
}

// SetCursorStyle sets the hardware cursor shape.
func (r *Renderer) SetCursorStyle(style backend.CursorStyle, blinking bool) {
	r.backend.SetCursorStyle(style, blinking)
}

// SetCursorColor sets the hardware cursor color.
func (r *Renderer) SetCursorColor(c color.RGBA) {
	r.backend.SetCursorColor(c)
}

// SetDebugOverlay toggles the frame stats overlay and places it in the
// given corner ("top-left", "top-right", "bottom-left", "bottom-right").
// An empty corner keeps the current one.
func (r *Renderer) SetDebugOverlay(enabled bool, corner string) {
	r.opts.DebugOverlay.Enabled = enabled
	if corner != "" {
		r.opts.DebugOverlay.Corner = corner
	}
	r.repaint = true
}

// Capabilities reports what the surrounding terminal environment
// supports.
func (r *Renderer) Capabilities() backend.Capabilities {
	return backend.Detect()
}

// ApplyOptions applies a reloaded option set to the renderer: frame
// pacing, mouse reporting, overlay, background, and width method take
// effect on the next frame. Call it on the frame goroutine, through Do
// when Run is active.
func (r *Renderer) ApplyOptions(opts config.Options) {
	if opts.TargetFPS >= config.MinTargetFPS && opts.TargetFPS != r.opts.TargetFPS {
		r.limiter.SetLimit(rate.Limit(opts.TargetFPS))
	}
	if opts.MouseEnabled != r.opts.MouseEnabled || opts.MouseMotion != r.opts.MouseMotion {
		if opts.MouseEnabled {
			r.backend.EnableMouse(opts.MouseMotion)
		} else {
			r.backend.DisableMouse()
			r.pointer.Reset()
		}
	}
	if bg := opts.BackgroundRGBA(); bg != r.background {
		r.background = bg
		r.full = true
	}
	if method := opts.BufferWidthMethod(); method != r.next.WidthMethod() {
		r.next.SetWidthMethod(method)
		r.current.SetWidthMethod(method)
	}
	r.opts = opts
	r.repaint = true
	r.log.Info(logging.CategoryConfig, "applied", "engine options applied", map[string]any{
		"fps": opts.TargetFPS,
	})
}

// Suspend releases the terminal for a subprocess.
func (r *Renderer) Suspend() error { return r.backend.Suspend() }

// Resume reclaims the terminal after Suspend and forces a full repaint.
func (r *Renderer) Resume() error {
	if err := r.backend.Resume(); err != nil {
		return err
	}
	r.backend.Sync()
	r.full = true
	r.repaint = true
	return nil
}

// Close releases the surface and the terminal. Safe to call more than
// once; Run arranges for it on the way out.
func (r *Renderer) Close() {
	r.closeOnce.Do(func() {
		if r.surface != nil {
			if err := r.surface.Close(); err != nil {
				r.log.Warn(logging.CategoryAccel, "close_failed", err.Error(), nil)
			}
			r.surface = nil
		}
		r.backend.Fini()
		r.log.Info(logging.CategoryEngine, "stop", "renderer closed", nil)
	})
}

// renderContext is the capability surface handed to the tree root:
// traversal registers hit regions through it and node mutations request
// repaints through it.
type renderContext struct {
	r *Renderer
}

func (c *renderContext) AddHitRegion(rect buffer.Rect, handle uint32) {
	c.r.hits.Add(rect, handle)
	c.r.frameNodes++
}

func (c *renderContext) ViewportWidth() int { return c.r.width }

func (c *renderContext) ViewportHeight() int { return c.r.height }

func (c *renderContext) RequestRepaint() { c.r.repaint = true }
