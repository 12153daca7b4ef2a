package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// debounceWindow coalesces the write bursts editors produce when saving.
const debounceWindow = 250 * time.Millisecond

// Watcher re-loads settings whenever the config file changes and hands each
// fresh snapshot to the registered callback. Watching the directory rather
// than the file survives rename-based atomic saves.
type Watcher struct {
	loader *FileLoader
	logger ports.Logger
}

// NewWatcher builds a watcher over the loader's config path.
func NewWatcher(loader *FileLoader, log ports.Logger) *Watcher {
	return &Watcher{loader: loader, logger: log}
}

// Run blocks until ctx is done, invoking onChange with every new settings
// snapshot. Load errors are logged and skipped; the previous snapshot stays
// authoritative until a loadable file shows up.
func (w *Watcher) Run(ctx context.Context, onChange func(domain.ConnectionSettings)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	path := w.loader.Path()
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", map[string]interface{}{"error": err.Error()})

		case <-fire:
			settings, err := w.loader.Load(ctx)
			if err != nil {
				w.logger.Warn("config reload failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			w.logger.Info("configuration reloaded", map[string]interface{}{"path": path})
			onChange(settings)
		}
	}
}
