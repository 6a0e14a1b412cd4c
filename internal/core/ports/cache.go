package ports

import "go.trai.ch/intellitip/internal/core/domain"

// EntityCache stores loaded entities and owns the watch subscriptions that evict them.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type EntityCache interface {
	// Get returns the cached entity for key.
	Get(key domain.CacheKey) (*domain.Entity, bool)
	// Put stores entity under key and watches its file if it is not watched yet.
	Put(key domain.CacheKey, entity *domain.Entity) error
	// Delete evicts a single key.
	Delete(key domain.CacheKey)
	// Invalidate evicts every key whose entity was read from one of paths.
	Invalidate(paths []string)
	// Close evicts everything and releases all watch subscriptions.
	Close() error
}
