// Package watcher re-runs the filter whenever one of its input files
// changes on disk.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration // Quiet period before a re-run (default: 500ms)
	StableThreshold time.Duration // Size must be unchanged this long (default: 300ms, 0 disables)
	StableTimeout   time.Duration // Give up waiting for stability (default: 30s)
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Debounce:        500 * time.Millisecond,
		StableThreshold: 300 * time.Millisecond,
		StableTimeout:   30 * time.Second,
	}
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Runs     int
	Failures int
	Duration time.Duration
}

// RunHandler performs one full run. changed lists the inputs whose change
// triggered it.
type RunHandler func(changed []string) error

// ErrorHandler receives watcher errors that do not stop the session.
type ErrorHandler func(err error)

// Watcher monitors input files and triggers sequential re-runs.
type Watcher struct {
	config    *WatchConfig
	handler   RunHandler
	onError   ErrorHandler
	inputs    *InputSet
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	stability *StabilityChecker
	batches   chan []string
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time

	mu       sync.Mutex
	runs     int
	failures int
}

// New creates a Watcher. If config is nil, default configuration is used.
func New(config *WatchConfig, handler RunHandler, onError ErrorHandler) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{
		config:    config,
		handler:   handler,
		onError:   onError,
		stability: NewStabilityChecker(config.StableThreshold, config.StableTimeout),
	}
}

// Start begins watching the given input files. Runs happen one at a time
// on a single goroutine, never concurrently. The watcher runs until Stop.
func (w *Watcher) Start(inputs []string) error {
	set, err := NewInputSet(inputs)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range set.Dirs() {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return err
		}
	}

	w.inputs = set
	w.fsWatcher = fsw
	w.batches = make(chan []string, 1)
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.debouncer = NewDebouncer(w.config.Debounce, w.enqueue)
	w.startTime = time.Now()

	w.wg.Add(2)
	go w.processEvents()
	go w.runLoop()

	return nil
}

// Stop shuts the watcher down, waits for an in-flight run to finish and
// returns a summary of the session.
func (w *Watcher) Stop() *WatchSummary {
	if w.cancel != nil {
		w.cancel()
	}
	if w.debouncer != nil {
		w.debouncer.CancelAll()
	}
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	return &WatchSummary{
		Runs:     w.runs,
		Failures: w.failures,
		Duration: time.Since(w.startTime),
	}
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.inputs.Contains(event.Name) {
				w.debouncer.Add(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// enqueue merges a debounced batch into the single pending slot, so a
// change arriving during a run yields exactly one follow-up run.
func (w *Watcher) enqueue(paths []string) {
	for {
		select {
		case w.batches <- paths:
			return
		case <-w.ctx.Done():
			return
		default:
		}
		select {
		case queued := <-w.batches:
			paths = mergePaths(queued, paths)
		default:
		}
	}
}

func (w *Watcher) runLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case changed := <-w.batches:
			for _, p := range changed {
				if err := w.stability.WaitForStable(w.ctx, p); err != nil {
					if w.ctx.Err() != nil {
						return
					}
					w.onError(err)
				}
			}

			err := w.handler(changed)
			w.mu.Lock()
			w.runs++
			if err != nil {
				w.failures++
			}
			w.mu.Unlock()
			if err != nil {
				w.onError(err)
			}
		}
	}
}

func mergePaths(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Runs returns the number of runs triggered so far.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// GetConfig returns the current watcher configuration.
func (w *Watcher) GetConfig() *WatchConfig {
	return w.config
}
