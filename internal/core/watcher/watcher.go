package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lineage/internal/shared/observability"
	"lineage/internal/shared/util"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single file. The parent directory is watched
// so editors that save by rename-replace are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    string
	debounce  time.Duration
	limiter   *util.Limiter
	onChange  func(context.Context, string)

	callbackMu sync.Mutex
	timerMu    sync.Mutex
	timer      *time.Timer
}

// NewWatcher watches target. onChange runs at most once per debounce window
// and, when minInterval is positive, no more than once per minInterval.
func NewWatcher(target string, debounce, minInterval time.Duration, onChange func(context.Context, string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve watch target %q: %w", target, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		fsWatcher: fsw,
		target:    filepath.Clean(abs),
		debounce:  debounce,
		limiter:   util.NewIntervalLimiter(minInterval),
		onChange:  onChange,
	}, nil
}

func (w *Watcher) Target() string {
	return w.target
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	slog.Info("watching file", "path", w.target, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			observability.WatcherEventsTotal.Inc()
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.schedule(ctx)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.fire(ctx)
	})
}

func (w *Watcher) fire(ctx context.Context) {
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()

	if err := w.limiter.Wait(ctx, 1); err != nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	observability.WatcherTriggersTotal.Inc()
	w.onChange(ctx, w.target)
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) Close() error {
	w.stopTimer()
	return w.fsWatcher.Close()
}
