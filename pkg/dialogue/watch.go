package dialogue

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs the script once, then re-runs it every time the file
// changes, until the context is cancelled. A failed run is logged and
// watching continues; only watcher failures end the loop. Events are
// debounced because editors commonly emit several writes per save.
func (r *Runtime) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors that replace the file
	// on save would otherwise drop the watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve script path: %w", err)
	}

	logger := r.logger.WithScript(path)
	logger.Info("Watching dialogue script")

	run := func() {
		if _, err := r.RunFile(ctx, path); err != nil {
			logger.WithError(err).Error("Script run failed, still watching")
		}
	}
	run()

	var rerunTimer *time.Timer
	const rerunDelay = 250 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			if rerunTimer != nil {
				rerunTimer.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}

			logger.WithField("op", event.Op.String()).Debug("Script file changed")

			if rerunTimer != nil {
				rerunTimer.Stop()
			}
			rerunTimer = time.AfterFunc(rerunDelay, run)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
