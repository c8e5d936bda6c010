// Package watch re-runs a callback when files in the template root change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/workflow-templates/templatelint/pkg/envutil"
	"github.com/workflow-templates/templatelint/pkg/logger"
)

// DebounceEnv overrides the debounce interval in milliseconds.
const DebounceEnv = "TEMPLATELINT_WATCH_DEBOUNCE_MS"

const defaultDebounceMs = 300

var debugLog = logger.New("watch:watch")

// DebounceFromEnv returns the debounce interval, honoring DebounceEnv.
func DebounceFromEnv() time.Duration {
	ms := envutil.GetIntFromEnv(DebounceEnv, defaultDebounceMs, 10, 10000, debugLog)
	return time.Duration(ms) * time.Millisecond
}

// Watcher calls OnChange once per burst of filesystem events in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
	log      *slog.Logger

	watcher *fsnotify.Watcher
}

// New watches dir. onChange runs on the Run goroutine, never concurrently
// with itself.
func New(dir string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		log:      slog.New(logger.NewSlogHandler(debugLog)).With("dir", dir),
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is cancelled or the watcher fails, and closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.log.Info("watching for changes", "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("event", "op", event.Op.String(), "file", filepath.Base(event.Name))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
			return fmt.Errorf("watching %s: %w", w.dir, err)

		case <-timer.C:
			w.log.Info("change detected, re-running")
			w.onChange(ctx)
		}
	}
}

// relevant filters out attribute-only changes.
func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}
