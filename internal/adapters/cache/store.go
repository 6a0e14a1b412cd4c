// Package cache implements the entity cache service.
package cache

import (
	"sync"
	"unique"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntityCache = (*Store)(nil)

// Store implements ports.EntityCache.
// It keeps a path-to-keys index so that a change of one definition file evicts every
// entry loaded from it, and holds exactly one watch subscription per indexed path.
type Store struct {
	mu         sync.RWMutex
	entries    map[domain.CacheKey]*domain.Entity
	pathToKeys map[unique.Handle[string]][]domain.CacheKey
	subs       map[unique.Handle[string]]ports.Subscription
	watcher    ports.Watcher
	logger     ports.Logger
}

// NewStore creates a new cache store that watches entity files with watcher.
func NewStore(watcher ports.Watcher, logger ports.Logger) *Store {
	return &Store{
		entries:    make(map[domain.CacheKey]*domain.Entity),
		pathToKeys: make(map[unique.Handle[string]][]domain.CacheKey),
		subs:       make(map[unique.Handle[string]]ports.Subscription),
		watcher:    watcher,
		logger:     logger,
	}
}

// Get returns the cached entity for key.
func (s *Store) Get(key domain.CacheKey) (*domain.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entries[key]
	return entity, ok
}

// Put stores entity under key and subscribes to changes of its file.
// When the subscription cannot be created the entity is not cached.
func (s *Store) Put(key domain.CacheKey, entity *domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := unique.Make(entity.FilePath)

	if _, watched := s.subs[path]; !watched {
		sub, err := s.watcher.Watch(entity.FilePath, s.onChange)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", entity.FilePath)
		}
		s.subs[path] = sub
	}

	// A key may move to another file, e.g. when a higher priority candidate appears.
	if previous, ok := s.entries[key]; ok && previous.FilePath != entity.FilePath {
		s.removeKeyLocked(key, unique.Make(previous.FilePath))
	}

	s.entries[key] = entity
	if !containsKey(s.pathToKeys[path], key) {
		s.pathToKeys[path] = append(s.pathToKeys[path], key)
	}
	return nil
}

// Delete evicts a single key. The subscription of its file is released
// once no other key references the file.
func (s *Store) Delete(key domain.CacheKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entries[key]
	if !ok {
		return
	}
	s.removeKeyLocked(key, unique.Make(entity.FilePath))
}

// Invalidate evicts every key loaded from one of paths and releases their subscriptions.
func (s *Store) Invalidate(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range paths {
		s.invalidateLocked(unique.Make(p))
	}
}

// Close evicts everything and releases all watch subscriptions.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, sub := range s.subs {
		if err := sub.Close(); err != nil {
			s.logger.Debug("cache: failed to release subscription for " + path.Value() + ": " + err.Error())
		}
	}
	clear(s.subs)
	clear(s.entries)
	clear(s.pathToKeys)
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Watched returns the number of live subscriptions.
func (s *Store) Watched() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// onChange evicts every entry of the changed file. It runs on the watcher's event goroutine
// before the next event is read, so a later Get cannot observe the stale entity.
func (s *Store) onChange(event ports.WatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := unique.Make(event.Path)
	// The subscription has already disposed itself.
	delete(s.subs, path)
	s.invalidateLocked(path)
	s.logger.Debug("cache: evicted entries of " + event.Path + " after " + event.Operation.String())
}

func (s *Store) invalidateLocked(path unique.Handle[string]) {
	for _, key := range s.pathToKeys[path] {
		delete(s.entries, key)
	}
	delete(s.pathToKeys, path)
	s.releaseLocked(path)
}

// removeKeyLocked removes key from the entries and the index of path.
func (s *Store) removeKeyLocked(key domain.CacheKey, path unique.Handle[string]) {
	delete(s.entries, key)

	keys := s.pathToKeys[path]
	for i, k := range keys {
		if k == key {
			keys = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	if len(keys) > 0 {
		s.pathToKeys[path] = keys
		return
	}
	delete(s.pathToKeys, path)
	s.releaseLocked(path)
}

func (s *Store) releaseLocked(path unique.Handle[string]) {
	sub, ok := s.subs[path]
	if !ok {
		return
	}
	delete(s.subs, path)
	if err := sub.Close(); err != nil {
		s.logger.Debug("cache: failed to release subscription for " + path.Value() + ": " + err.Error())
	}
}

func containsKey(keys []domain.CacheKey, key domain.CacheKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
