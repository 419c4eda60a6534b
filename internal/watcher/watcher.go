// Package watcher turns raw filesystem events into debounced, filtered
// change notifications for the indexing pipeline.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/indexer"
	"github.com/custodia-labs/docsearch/internal/logger"
)

// EventKind classifies a coalesced file event.
type EventKind int

// Coalesced event kinds.
const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
)

// Handler receives debounced file events. Calls arrive on the watcher's
// dispatch goroutine, one batch at a time.
type Handler interface {
	OnCreated(path string)
	OnModified(path string)
	OnDeleted(path string)
}

// PathFilter decides which files are worth watching, typically backed
// by the extractor registry.
type PathFilter interface {
	CanExtract(path string) bool
}

// DefaultDebounce is how long a path must stay quiet before its event
// is released.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directory trees recursively and delivers debounced
// per-path events: rapid saves of the same file collapse into one
// notification, with the last event kind winning.
type Watcher struct {
	debounce       time.Duration
	ignorePatterns []string
	filter         PathFilter
	handler        Handler

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]EventKind
	timer   *time.Timer
	started bool
	closed  bool

	doneCh chan struct{}
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before pending events release.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnorePatterns sets glob patterns matched against a file's name
// and each of its ancestor directory names.
func WithIgnorePatterns(patterns []string) Option {
	return func(w *Watcher) {
		w.ignorePatterns = patterns
	}
}

// New creates a watcher delivering events to handler. Files the filter
// rejects are dropped; a nil filter accepts everything.
func New(handler Handler, filter PathFilter, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		debounce: DefaultDebounce,
		filter:   filter,
		handler:  handler,
		fsw:      fsw,
		pending:  make(map[string]EventKind),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching the given roots recursively and processing
// events until Stop is called.
func (w *Watcher) Start(roots []string) error {
	for _, root := range roots {
		if err := w.watchTree(root); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	go w.loop()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
// Pending debounced events are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWatcherClosed
	}
	w.closed = true
	started := w.started
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	if started {
		<-w.doneCh
	}
	return err
}

// watchTree adds root and every non-ignored subdirectory to the watch.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// handleFsEvent maps a raw fsnotify event onto the coalescing map.
// A rename is delivered as a delete of the old path; the new path
// arrives separately as a create.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Create):
		// Watch newly created directories so the tree stays covered.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignored(path) {
				if err := w.watchTree(path); err != nil {
					logger.Warn("watching new directory %s: %v", path, err)
				}
			}
			return
		}
		w.record(path, EventCreated)

	case event.Has(fsnotify.Write):
		w.record(path, EventModified)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.record(path, EventDeleted)
	}
}

// record files a debounced event for a path. The last kind wins, and
// every new event pushes the release timer back.
func (w *Watcher) record(path string, kind EventKind) {
	if w.ignored(path) {
		return
	}
	// Extension filtering applies to deletes too: a file we never
	// indexed has nothing to remove.
	if w.filter != nil && !w.filter.CanExtract(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.pending[path] = kind

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush dispatches all pending events in one batch.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]EventKind)
	w.mu.Unlock()

	logger.Debug("watcher releasing %d debounced event(s)", len(batch))
	for path, kind := range batch {
		switch kind {
		case EventCreated:
			w.handler.OnCreated(path)
		case EventModified:
			w.handler.OnModified(path)
		case EventDeleted:
			w.handler.OnDeleted(path)
		}
	}
}

// ignored reports whether the path's name or any ancestor directory
// name matches an ignore pattern.
func (w *Watcher) ignored(path string) bool {
	return indexer.IgnoredPath(path, w.ignorePatterns)
}
