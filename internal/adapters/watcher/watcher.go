package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"unique"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// Watcher implements per-file watch subscriptions on top of a single fsnotify watcher.
// The parent directory of each file is watched, so replacing a file by rename is seen
// like any other write. A path may have several subscriptions; each fires at most once
// and then disposes itself.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger

	mu     sync.Mutex
	subs   map[unique.Handle[string]][]*subscription
	dirs   map[string]int
	closed bool
	done   chan struct{}
}

// subscription is a live watch on a single file.
type subscription struct {
	w       *Watcher
	path    unique.Handle[string]
	handler func(ports.WatchEvent)
}

// NewWatcher creates a new file watcher and starts processing events.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	w := &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		subs:      make(map[unique.Handle[string]][]*subscription),
		dirs:      make(map[string]int),
		done:      make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// Watch subscribes handler to the next change of the existing file at path.
// Every call returns a new subscription; all subscriptions of a path fire on its next change.
func (w *Watcher) Watch(path string, handler func(ports.WatchEvent)) (ports.Subscription, error) {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, zerr.With(domain.ErrWatchFailed, "path", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", path)
	}

	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", path)
		}
	}
	w.dirs[dir]++

	handle := unique.Make(path)
	sub := &subscription{w: w, path: handle, handler: handler}
	w.subs[handle] = append(w.subs[handle], sub)
	return sub, nil
}

// Close stops the watcher and releases every outstanding subscription.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	clear(w.subs)
	clear(w.dirs)
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	<-w.done
	return err
}

// Len returns the number of live subscriptions.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, subs := range w.subs {
		n += len(subs)
	}
	return n
}

// Close cancels the subscription. Closing twice is a no-op.
func (s *subscription) Close() error {
	s.w.release(s)
	return nil
}

// release removes sub from the registry and stops watching its directory once unused.
func (w *Watcher) release(sub *subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.releaseLocked(sub)
}

func (w *Watcher) releaseLocked(sub *subscription) {
	subs := w.subs[sub.path]
	i := slices.Index(subs, sub)
	if i < 0 {
		return
	}
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(w.subs, sub.path)
	} else {
		w.subs[sub.path] = subs
	}

	dir := filepath.Dir(sub.path.Value())
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if !w.closed {
		// The directory may already be gone from the watch list after a remove.
		_ = w.fsWatcher.Remove(dir)
	}
}

// processEvents converts raw fsnotify events and dispatches them to subscriptions.
func (w *Watcher) processEvents() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}
			w.dispatch(watchEvent)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher: file system error: " + err.Error())
		}
	}
}

// dispatch disposes every subscription for the event's path, then runs their handlers
// in subscription order. Handlers run synchronously so that eviction happens before
// the next event is read.
func (w *Watcher) dispatch(event ports.WatchEvent) {
	w.mu.Lock()
	subs := slices.Clone(w.subs[unique.Make(filepath.Clean(event.Path))])
	for _, sub := range subs {
		w.releaseLocked(sub)
	}
	w.mu.Unlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

// convertEvent converts an fsnotify event to a ports.WatchEvent.
// Chmod-only events are ignored.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	path := event.Name

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		return ports.WatchEvent{Path: path, Operation: ports.OpWrite}, true
	case event.Op&fsnotify.Create == fsnotify.Create:
		return ports.WatchEvent{Path: path, Operation: ports.OpCreate}, true
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		return ports.WatchEvent{Path: path, Operation: ports.OpRemove}, true
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		return ports.WatchEvent{Path: path, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}
