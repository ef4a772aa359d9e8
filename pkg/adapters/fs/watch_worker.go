package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// HandleFunc is called once per settled file matching the watch pattern.
type HandleFunc func(ctx context.Context, path string) error

// WatchConfig configures a WatchWorker.
type WatchConfig struct {
	// Root is the directory to watch, recursively.
	Root string
	// Pattern is a doublestar pattern matched against paths relative to Root.
	Pattern string
	// Settle is how long a file must stay quiet before it is handled.
	Settle       time.Duration
	Handle       HandleFunc
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// WatchWorker converts files as they appear in a directory tree.
type WatchWorker struct {
	*worker.BaseWorker
	config    WatchConfig
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc

	mu      sync.RWMutex
	active  bool
	handled int
	failed  int
}

// NewWatchWorker creates a watcher for config.Root.
func NewWatchWorker(config WatchConfig) *WatchWorker {
	if config.Pattern == "" {
		config.Pattern = "**/*.{ODF,odf}"
	}
	if config.Settle <= 0 {
		config.Settle = 200 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WatchWorker{
		BaseWorker: worker.NewBaseWorker("odf-watcher"),
		config:     config,
	}
}

func (w *WatchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if w.config.Handle == nil {
		return fmt.Errorf("watcher has no handler")
	}
	if !doublestar.ValidatePattern(w.config.Pattern) {
		return fmt.Errorf("invalid watch pattern %q", w.config.Pattern)
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := recursiveAdd(watcher, w.config.Root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.config.Settle)
	w.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *WatchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *WatchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"root":              w.config.Root,
			"pattern":           w.config.Pattern,
		}
	})
}

// Active reports whether the event loop is running.
func (w *WatchWorker) Active() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

func (w *WatchWorker) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// matches reports whether p, relative to the root, matches the pattern.
func (w *WatchWorker) matches(p string) bool {
	rel, err := filepath.Rel(w.config.Root, p)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// processFilesystemEvent handles filtering and debouncing of filesystem events.
// Returns true if event was scheduled for handling.
func (w *WatchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) (processed bool) {
	w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := recursiveAdd(w.watcher, event.Name); err != nil {
				w.handleWatcherError(err)
			}
			return false
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if filepath.Base(event.Name)[0] == '.' || !w.matches(event.Name) {
		return false
	}

	name := event.Name
	w.debouncer.add(name, func() {
		w.handle(ctx, name)
	})
	return true
}

// handle runs the handler for one settled file, tracked by lifecycle.
func (w *WatchWorker) handle(ctx context.Context, p string) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		if err := w.config.Handle(ctx, p); err != nil {
			w.mu.Lock()
			w.failed++
			w.mu.Unlock()
			w.handleWatcherError(fmt.Errorf("failed to handle %s: %w", p, err))
			return err
		}
		w.mu.Lock()
		w.handled++
		w.mu.Unlock()
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.handleWatcherError(fmt.Errorf("handler panic: %w", err))
	}))
}

// handleWatcherError processes errors from the fsnotify watcher and handlers.
func (w *WatchWorker) handleWatcherError(err error) (shouldContinue bool) {
	w.config.Logger.Error("watch error", "error", err)
	if w.config.ErrorHandler != nil {
		w.config.ErrorHandler(err)
	}
	return true
}

// run is the main event loop for the watcher worker.
func (w *WatchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic",
					"error", panicErr,
					"stack", string(debug.Stack()),
				)
			} else {
				w.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.setActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Stop accepting new events and wait for in-flight timers.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *WatchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}

// debouncer coalesces bursts of events per key into a single call.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[key] == timer {
			delete(d.timers, key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	d.timers[key] = timer
}

// stopAndWait cancels pending timers and waits up to timeout for running ones.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
