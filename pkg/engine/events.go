package engine

import (
	"github.com/okanek/tessera/pkg/input"
	"github.com/okanek/tessera/pkg/logging"
)

// SetKeyHandler installs the host's keyboard handler.
func (r *Renderer) SetKeyHandler(fn func(input.KeyEvent)) { r.keyHandler = fn }

// SetPasteHandler installs the host's bracketed paste handler.
func (r *Renderer) SetPasteHandler(fn func(input.PasteEvent)) { r.pasteHandler = fn }

// SetResizeHandler installs a hook that runs after the renderer has
// adopted new terminal dimensions.
func (r *Renderer) SetResizeHandler(fn func(width, height int)) { r.resizeHandler = fn }

// HandleEvent feeds one backend event through the engine: mouse events
// drive selection and node dispatch, resize events re-fit the buffers,
// key and paste events go to the host handlers. Run calls this from the
// frame goroutine; hosts driving manually must use one goroutine.
func (r *Renderer) HandleEvent(ev input.Event) {
	switch e := ev.(type) {
	case input.MouseEvent:
		r.handleMouse(e)
	case input.KeyEvent:
		if r.keyHandler != nil {
			r.keyHandler(e)
		}
	case input.PasteEvent:
		if r.pasteHandler != nil {
			r.pasteHandler(e)
		}
	case input.ResizeEvent:
		if err := r.Resize(e.Width, e.Height); err != nil {
			r.log.Error(logging.CategoryEngine, "resize_failed", err.Error(), map[string]any{
				"width":  e.Width,
				"height": e.Height,
			})
			return
		}
		if r.resizeHandler != nil {
			r.resizeHandler(e.Width, e.Height)
		}
	}
}

// handleMouse runs the selection gesture first, then expands the raw
// event into semantic pointer events and dispatches each along the
// target's ancestor chain.
func (r *Renderer) handleMouse(ev input.MouseEvent) {
	switch ev.Type {
	case input.MouseDown:
		if ev.Button == input.MouseLeft {
			if !r.sel.Begin(ev.X, ev.Y) && r.sel.IsActive() {
				r.sel.Clear()
			}
		}
	case input.MouseMove:
		if r.sel.IsSelecting() {
			r.sel.Update(ev.X, ev.Y)
		}
	case input.MouseUp:
		if ev.Button == input.MouseLeft && r.sel.IsSelecting() {
			r.sel.End()
			r.log.Debug(logging.CategorySelection, "end", "selection gesture finished", map[string]any{
				"x": ev.X,
				"y": ev.Y,
			})
		}
	}

	for _, t := range r.pointer.Track(ev, r.lookupHit) {
		r.dispatch(t)
	}
}

// dispatch delivers one targeted event from the hit node up its
// ancestor chain until a handler prevents further bubbling.
func (r *Renderer) dispatch(t input.Targeted) {
	n := r.registry.Node(t.Handle)
	if n == nil {
		return
	}
	var chain []input.MouseHandler
	for cur := n; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	ev := t.Event
	input.DispatchMouse(&ev, chain...)
}
