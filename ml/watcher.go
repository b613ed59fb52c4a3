package ml

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchBundle logs a warning when the bundle artifact changes on disk. The
// loaded bundle itself stays as-is; a restart is required to pick up the new
// artifact, which keeps the feature order immutable for the process lifetime.
func WatchBundle(ctx context.Context, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: trainers usually replace the file rather than
	// write it in place, and a rename would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					logger.Warn("model bundle changed on disk, restart to load it",
						zap.String("path", path),
						zap.String("op", event.Op.String()))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("bundle watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
