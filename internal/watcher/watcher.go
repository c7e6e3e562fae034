// Package watcher implements fix-and-rerun mode: it monitors the files a
// conversion run could not decode and re-processes each one as soon as the
// user repairs it.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains watcher settings.
type Config struct {
	Debounce        time.Duration // delay before processing after the last event
	StableThreshold time.Duration // file size must be unchanged for this long
}

// FileHandler re-processes one repaired file. It returns true when the file
// is now clean and no longer needs watching.
type FileHandler func(path string) (fixed bool, err error)

// Summary contains statistics from a watch session.
type Summary struct {
	Fixed    int
	Failed   int
	Pending  int
	Duration time.Duration
}

// Watcher monitors a set of files for repairs.
type Watcher struct {
	config    Config
	handler   FileHandler
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	stability *StabilityChecker

	mu      sync.Mutex
	tracked map[string]bool // absolute path → still pending
	fixed   int
	failed  int

	done      chan struct{}
	allFixed  chan struct{}
	startTime time.Time
	wg        sync.WaitGroup
}

// New creates a Watcher that invokes handler for each repaired file.
func New(config Config, handler FileHandler) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:    config,
		handler:   handler,
		fsWatcher: fsWatcher,
		stability: NewStabilityChecker(config.StableThreshold),
		tracked:   make(map[string]bool),
		done:      make(chan struct{}),
		allFixed:  make(chan struct{}),
	}
	w.debouncer = NewDebouncer(config.Debounce, w.process)
	return w, nil
}

// Track registers files to watch. fsnotify watches their parent directories,
// since editors commonly replace a file by rename rather than writing it in
// place.
func (w *Watcher) Track(paths []string) error {
	dirs := make(map[string]bool)
	w.mu.Lock()
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		w.tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	w.mu.Unlock()

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the event loop.
func (w *Watcher) Start() {
	w.startTime = time.Now()
	w.wg.Add(1)
	go w.loop()
}

// AllFixed returns a channel closed once every tracked file has been
// repaired and re-processed.
func (w *Watcher) AllFixed() <-chan struct{} {
	return w.allFixed
}

// Stop shuts the watcher down and returns session statistics.
func (w *Watcher) Stop() Summary {
	close(w.done)
	w.debouncer.CancelAll()
	w.fsWatcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	return Summary{
		Fixed:    w.fixed,
		Failed:   w.failed,
		Pending:  len(w.tracked),
		Duration: time.Since(w.startTime),
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				abs = event.Name
			}
			w.mu.Lock()
			pending := w.tracked[abs]
			w.mu.Unlock()
			if pending {
				w.debouncer.Add(abs)
			}
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// process runs after the debounce delay for one repaired file.
func (w *Watcher) process(path string) {
	select {
	case <-w.done:
		return
	default:
	}

	// The user may still be saving; wait for the size to settle.
	if err := w.stability.WaitForStable(path); err != nil {
		return
	}

	fixed, err := w.handler(path)

	w.mu.Lock()
	if err != nil || !fixed {
		w.failed++
	} else {
		w.fixed++
		delete(w.tracked, path)
		if len(w.tracked) == 0 {
			close(w.allFixed)
		}
	}
	w.mu.Unlock()
}
