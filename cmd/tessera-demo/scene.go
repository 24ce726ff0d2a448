package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okanek/tessera/pkg/buffer"
	"github.com/okanek/tessera/pkg/color"
	"github.com/okanek/tessera/pkg/config"
	"github.com/okanek/tessera/pkg/engine"
	"github.com/okanek/tessera/pkg/input"
	"github.com/okanek/tessera/pkg/layout"
	"github.com/okanek/tessera/pkg/scene"
)

var (
	headerBg  = color.FromInts(24, 26, 38, 255)
	headerFg  = color.FromInts(140, 150, 180, 255)
	panelBg   = color.FromInts(16, 18, 28, 255)
	hintFg    = color.FromInts(110, 118, 142, 255)
	tealFill  = color.FromInts(20, 120, 110, 255)
	roseVeil  = color.RGBA{R: 0.85, G: 0.25, B: 0.45, A: 0.55}
	waveVeil  = color.RGBA{R: 0.08, G: 0.10, B: 0.20, A: 0.6}
	waveLow   = color.FromInts(80, 180, 250, 255)
	waveHigh  = color.FromInts(250, 130, 90, 255)
	statusFg  = color.FromInts(170, 178, 200, 255)
	borderDim = color.FromInts(90, 96, 120, 255)
)

// demo owns the example scene: a titled header, a selectable about
// panel, two draggable boxes that overlap to show blending, an animated
// wave in a respect-alpha framebuffer, and a status line.
type demo struct {
	r *engine.Renderer

	header  *scene.Box
	hints   *scene.Text
	about   *scene.Box
	wave    *scene.FrameBuffer
	caption *scene.Text
	status  *scene.Text

	overlay bool
	elapsed time.Duration
	copied  string
}

func buildScene(r *engine.Renderer, opts config.Options) (*demo, error) {
	d := &demo{r: r, overlay: opts.DebugOverlay.Enabled}
	reg := r.Registry()
	root := r.Root()
	method := opts.BufferWidthMethod()

	d.header = scene.NewBox(reg, "header")
	d.header.SetBorder(true)
	d.header.SetBorderColor(headerFg)
	d.header.SetBackground(headerBg)
	d.header.SetTitle("tessera", buffer.AlignCenter)

	d.hints = scene.NewText(reg, "hints", method)
	d.hints.SetDefaultStyle(hintFg, nil, 0)
	d.hints.SetSelectable(false)
	d.hints.SetText("q quit    d overlay    c copy selection    drag the boxes")
	d.hints.SetPosition(2, 1)
	if err := d.header.AddChild(d.hints); err != nil {
		return nil, err
	}

	d.about = scene.NewBox(reg, "about")
	d.about.SetPosition(2, 4)
	d.about.SetSize(46, 8)
	d.about.SetBorder(true)
	d.about.SetBorderColor(borderDim)
	d.about.SetBackground(panelBg)
	d.about.SetTitle("about", buffer.AlignLeft)

	blurb := scene.NewText(reg, "blurb", method)
	blurb.SetText("Every node here lives in one scene tree and\n" +
		"composites into a shared cell buffer. Drag\n" +
		"across this text with the mouse: the selection\n" +
		"follows reading order even across nodes, and\n" +
		"the c key copies whatever is highlighted.")
	blurb.SetPosition(2, 1)
	if err := d.about.AddChild(blurb); err != nil {
		return nil, err
	}

	solid := newDragBox(reg, "solid", "solid teal", tealFill)
	solid.SetPosition(6, 14)
	solid.SetZIndex(1)

	veil := newDragBox(reg, "veil", "55% rose", roseVeil)
	veil.SetPosition(16, 16)
	veil.SetZIndex(2)

	wave, err := scene.NewFrameBuffer(reg, "wave", 30, 7, true)
	if err != nil {
		return nil, err
	}
	d.wave = wave
	d.wave.SetZIndex(3)

	d.caption = scene.NewText(reg, "caption", method)
	d.caption.SetDefaultStyle(hintFg, nil, 0)
	d.caption.SetSelectable(false)
	d.caption.SetText("framebuffer node, 60% veil")

	d.status = scene.NewText(reg, "status", method)
	d.status.SetDefaultStyle(statusFg, nil, 0)
	d.status.SetSelectable(false)

	for _, n := range []scene.Node{d.header, d.about, solid, veil, d.wave, d.caption, d.status} {
		if err := root.AddChild(n); err != nil {
			return nil, err
		}
	}

	d.layout()
	d.setStatus("ready")
	r.AddFrameCallback(d.animate)
	return d, nil
}

// layout pins the chrome to the viewport edges. Called at startup and on
// every terminal resize.
func (d *demo) layout() {
	w, h := d.r.Size()
	viewport := layout.Box{Width: w, Height: h}
	var solver layout.Fixed
	layout.Apply(d.header, solver.Resolve(layout.Spec{Width: w, Height: 3}, viewport))
	layout.Apply(d.wave, solver.Resolve(layout.Spec{
		X:      max(50, w-32),
		Y:      4,
		Width:  d.wave.Width(),
		Height: d.wave.Height(),
	}, viewport))
	wx, wy := d.wave.Position()
	d.caption.SetPosition(wx, wy+d.wave.Height())
	d.status.SetPosition(1, h-1)
}

func (d *demo) setStatus(msg string) {
	d.status.SetText(msg)
}

// bind installs the demo's input handlers. cancel ends the run loop.
func (d *demo) bind(cancel context.CancelFunc) {
	d.r.SetKeyHandler(func(ev input.KeyEvent) {
		switch ev.Name {
		case "q", "escape", "ctrl+c":
			cancel()
		case "d":
			d.overlay = !d.overlay
			d.r.SetDebugOverlay(d.overlay, "")
		case "c":
			if text := d.r.Selection().SelectedText(); text != "" {
				d.copied = text
				d.setStatus(fmt.Sprintf("copied %d bytes, echoed after exit", len(text)))
			} else {
				d.setStatus("nothing selected")
			}
		}
	})
	d.r.SetPasteHandler(func(ev input.PasteEvent) {
		d.setStatus(fmt.Sprintf("pasted %d bytes", len(ev.Text)))
	})
	d.r.SetResizeHandler(func(width, height int) {
		d.layout()
	})
}

// animate draws one frame of the sine ribbon into the wave panel.
func (d *demo) animate(dt time.Duration) {
	d.elapsed += dt
	fb := d.wave.Buffer()
	fb.Clear(waveVeil)

	w, h := fb.Size()
	t := d.elapsed.Seconds()
	for x := 0; x < w; x++ {
		phase := t*2.2 + float64(x)*0.35
		center := (math.Sin(phase) + 1) / 2 * float64(h-1)
		ci := int(math.Round(center))
		grad := waveLow.Lerp(waveHigh, float32(x)/float32(max(w-1, 1)))
		for off := -1; off <= 1; off++ {
			y := ci + off
			if y < 0 || y >= h {
				continue
			}
			ch := '▒'
			if off == 0 {
				ch = '█'
			}
			fb.Set(x, y, ch, grad, waveVeil, 0)
		}
	}
}

// dragBox is a custom node: it embeds scene.Base, draws its own fill and
// label, and follows left-button drags.
type dragBox struct {
	scene.Base

	fill  color.RGBA
	label string

	dragging     bool
	grabX, grabY int
}

func newDragBox(reg *scene.Registry, id, label string, fill color.RGBA) *dragBox {
	n := &dragBox{Base: scene.NewBase(id), fill: fill, label: label}
	n.SetSize(16, 5)
	reg.Register(n)
	return n
}

func (n *dragBox) OnMouse(ev *input.MouseEvent) {
	switch ev.Type {
	case input.MouseDown:
		if ev.Button != input.MouseLeft {
			return
		}
		x, y := n.ScreenPosition()
		n.grabX, n.grabY = ev.X-x, ev.Y-y
		n.dragging = true
		ev.PreventDefault()
	case input.MouseDrag:
		if !n.dragging {
			return
		}
		// The box hangs off the root, so local offsets are screen cells.
		n.SetPosition(ev.X-n.grabX, ev.Y-n.grabY)
		ev.PreventDefault()
	case input.MouseDragEnd:
		n.dragging = false
	}
}

func (n *dragBox) Draw(buf *buffer.Buffer, dt time.Duration) {
	r := n.Bounds()
	buf.FillRect(r.X, r.Y, r.Width, r.Height, n.fill)
	tx := r.X + (r.Width-buffer.MeasureText(n.label, buf.WidthMethod()))/2
	buf.DrawText(n.label, tx, r.Y+r.Height/2, color.White, nil, buffer.AttrBold, nil)
}
