package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the configuration file and invokes onChange whenever it
// is written or replaced. Provider configuration is immutable once the
// registry is built, so the typical onChange handler logs that a restart
// is required rather than attempting a live reload.
//
// Watch blocks until the context is cancelled. Watching the parent
// directory rather than the file itself survives the rename-and-replace
// pattern editors and config-management tools use.
func Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	slog.Info("watching configuration file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Info("configuration file changed", "path", target, "op", event.Op.String())
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("configuration watcher error", "error", err)
		}
	}
}
