package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// ErrWatcherRunning is returned by Start on a watcher that is already running.
var ErrWatcherRunning = errors.New("dataset watcher already running")

const (
	defaultDebounce = 250 * time.Millisecond
	tickInterval    = 50 * time.Millisecond
)

// Watcher reloads a catalog file when it changes on disk and hands each
// successfully parsed catalog to onReload. Failed reloads keep the previous
// catalog in place.
//
// The parent directory is watched rather than the file so editors that
// replace the file by rename are picked up.
type Watcher struct {
	path     string
	onReload func(*Catalog)
	debounce time.Duration
	log      logger.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	pending  time.Time
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	reloads  int
	failures int
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before it is reloaded.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger overrides the watcher's logger.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWatcher creates a watcher for path. It does nothing until Start.
func NewWatcher(path string, onReload func(*Catalog), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		debounce: defaultDebounce,
		log:      logger.Named("dataset"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWatcherRunning
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}

	w.watcher = fw
	w.running = true
	w.pending = time.Time{}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.run(ctx, fw, w.stopCh, w.doneCh)

	w.log.Info(ctx, "watching dataset", logger.String("path", w.path))
	return nil
}

// Stop ends watching and waits for the event loop to exit. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh, fw := w.stopCh, w.doneCh, w.watcher
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	if err := fw.Close(); err != nil {
		w.log.Warn(context.Background(), "closing dataset watcher", logger.Error(err))
	}
}

// Stats reports successful and failed reloads since construction.
func (w *Watcher) Stats() (reloads, failures int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.failures
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "dataset watcher error", logger.Error(err))
			metrics.RecordErrorByComponent("dataset", "watch")
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.reload(ctx)
}

func (w *Watcher) reload(ctx context.Context) {
	c, err := Load(w.path)

	w.mu.Lock()
	if err != nil {
		w.failures++
	} else {
		w.reloads++
	}
	w.mu.Unlock()

	if err != nil {
		metrics.RecordDatasetReload(false, 0)
		w.log.Warn(ctx, "dataset reload failed, keeping previous catalog",
			logger.String("path", w.path), logger.Error(err))
		return
	}

	metrics.RecordDatasetReload(true, c.Size())
	if missing := c.Missing(); len(missing) > 0 {
		w.log.Warn(ctx, "dataset references unknown contestants", logger.Any("missing", missing))
	}
	w.log.Info(ctx, "dataset reloaded",
		logger.String("path", w.path), logger.Int("contestants", c.Size()))
	if w.onReload != nil {
		w.onReload(c)
	}
}
