package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okanek/tessera/pkg/errors"
	"github.com/okanek/tessera/pkg/logging"
)

// debounceDelay coalesces the burst of filesystem events an editor emits
// when saving a file.
const debounceDelay = 100 * time.Millisecond

// Watch reloads path on change and emits the validated result. The channel
// holds the latest options only; a slow receiver sees the newest reload,
// not every intermediate one. The channel closes when ctx is done. Reload
// failures are logged and the previous options stay in effect.
func Watch(ctx context.Context, path string, log *logging.Logger) (<-chan Options, error) {
	if log == nil {
		log = logging.Nop()
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "cannot resolve config path").
			WithContext("path", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "cannot create config watcher")
	}

	// Watch the directory rather than the file: editors save by writing a
	// temp file and renaming it over the original, which drops a watch
	// placed on the file itself.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "cannot watch config directory").
			WithContext("dir", filepath.Dir(target))
	}

	out := make(chan Options, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceDelay)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounceDelay)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn(logging.CategoryConfig, "watch_error", "config watcher error", map[string]any{
					"error": err.Error(),
				})

			case <-fire:
				timer = nil
				fire = nil
				opts, err := Load(path)
				if err != nil {
					log.Warn(logging.CategoryConfig, "reload_failed", "config reload failed, keeping previous options", map[string]any{
						"path":  path,
						"error": err.Error(),
					})
					continue
				}
				log.Info(logging.CategoryConfig, "reloaded", "config reloaded", map[string]any{
					"path": path,
				})
				push(out, opts)
			}
		}
	}()

	return out, nil
}

// push replaces any undelivered options so the receiver always gets the
// newest reload. Single sender only.
func push(out chan Options, opts Options) {
	select {
	case out <- opts:
	default:
		select {
		case <-out:
		default:
		}
		out <- opts
	}
}
