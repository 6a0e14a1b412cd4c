// Package modcache loads definition entities through the entity cache.
package modcache

import (
	"context"
	"path/filepath"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Cache loads the first decodable candidate of a resolution and caches it by semantic key.
// The cached entity records the base path location that produced it.
type Cache struct {
	store  ports.EntityCache
	fs     ports.FileSystem
	defs   ports.DefinitionLoader
	logger ports.Logger

	group singleflight.Group
}

// New creates a Cache.
func New(store ports.EntityCache, fsys ports.FileSystem, defs ports.DefinitionLoader, logger ports.Logger) *Cache {
	return &Cache{
		store:  store,
		fs:     fsys,
		defs:   defs,
		logger: logger,
	}
}

// Load returns the entity for key. A cached entity is returned as is; otherwise
// candidates are tried in order and the first existing file that decodes wins.
// Concurrent loads of the same key share one decode.
// It reports false when no candidate could be loaded.
func (c *Cache) Load(ctx context.Context, key domain.CacheKey, candidates []domain.Candidate) (*domain.Entity, bool) {
	if entity, ok := c.store.Get(key); ok {
		c.logger.Debug("modcache: hit " + key.String())
		return entity, true
	}

	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		if entity, ok := c.store.Get(key); ok {
			return entity, nil
		}

		entity := c.loadFirst(ctx, key, candidates)
		if entity == nil {
			return nil, nil
		}
		if err := c.store.Put(key, entity); err != nil {
			c.logger.Debug("modcache: " + err.Error())
		}
		return entity, nil
	})

	entity, ok := v.(*domain.Entity)
	return entity, ok && entity != nil
}

func (c *Cache) loadFirst(ctx context.Context, key domain.CacheKey, candidates []domain.Candidate) *domain.Entity {
	for _, candidate := range candidates {
		if !c.fs.Exists(candidate.Path) {
			c.logger.Debug("modcache: no file at " + candidate.Path)
			continue
		}

		entity, err := c.decode(ctx, key, candidate)
		if err != nil {
			c.logger.Debug("modcache: " + err.Error())
			continue
		}

		c.logger.Debug("modcache: loaded " + candidate.Path)
		return entity
	}

	c.logger.Debug("modcache: no definition found for " + key.Target)
	return nil
}

func (c *Cache) decode(ctx context.Context, key domain.CacheKey, candidate domain.Candidate) (*domain.Entity, error) {
	value, err := c.defs.Load(ctx, candidate.Path)
	if err != nil {
		return nil, zerr.With(err, "path", candidate.Path)
	}

	data, ok := value.(*domain.Object)
	if !ok {
		return nil, zerr.With(domain.ErrNotAnObject, "path", candidate.Path)
	}

	if filepath.Ext(candidate.Path) == domain.ExtMarkdown && !data.Has(domain.KeyName) {
		named := domain.ObjectFromPairs(domain.KeyName, key.Target)
		for k, v := range data.All() {
			named.Set(k, v)
		}
		data = named
	}

	return domain.NewEntity(data, candidate.Path, candidate.BasePath), nil
}
