package demo

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/imdraw"
)

// Watch reloads the config at path whenever it changes and passes the
// result to fn. The directory is watched rather than the file, so editors
// that save by rename are seen too. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(SceneConfig, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("demo: watch %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("demo: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("demo: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			imdraw.Logger().Debug("config changed", "path", abs, "op", event.Op.String())
			fn(LoadConfig(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			imdraw.Logger().Warn("config watcher error", "err", err)
		}
	}
}
