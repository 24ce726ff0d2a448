package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okanek/tessera/pkg/input"
)

const eventBuffer = 128

// Run drives the renderer until the context is canceled: one goroutine
// polls the backend while the frame goroutine drains events, applies
// posted functions, and renders when something is dirty, paced at the
// configured frame rate. The backend is closed on the way out; Run
// returns the context's error after a cancellation.
func (r *Renderer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer r.Close()

	events := make(chan input.Event, eventBuffer)
	frameDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frameDone)
		last := time.Now()
		for {
			if err := r.limiter.Wait(gctx); err != nil {
				return err
			}
			r.drain(events)
			now := time.Now()
			dt := now.Sub(last)
			last = now
			if r.repaint || len(r.frameCallbacks) > 0 {
				r.Render(dt)
			}
		}
	})

	g.Go(func() error {
		for {
			ev := r.backend.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-gctx.Done():
				return nil
			}
		}
	})

	// PollEvent only returns once the backend is finalized, so close it
	// after the frame goroutine has stopped touching the screen.
	g.Go(func() error {
		<-gctx.Done()
		<-frameDone
		r.Close()
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// drain handles every queued event and posted function without
// blocking, on the calling goroutine.
func (r *Renderer) drain(events <-chan input.Event) {
	for {
		select {
		case ev := <-events:
			r.HandleEvent(ev)
		case fn := <-r.funcs:
			fn()
		default:
			return
		}
	}
}
