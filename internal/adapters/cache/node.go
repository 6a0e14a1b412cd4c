package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/intellitip/internal/adapters/logger"
	"go.trai.ch/intellitip/internal/adapters/watcher"
	"go.trai.ch/intellitip/internal/core/ports"
)

// NodeID is the unique identifier for the entity cache Graft node.
const NodeID graft.ID = "adapter.cache"

func init() {
	graft.Register(graft.Node[ports.EntityCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{watcher.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.EntityCache, error) {
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(w, log), nil
		},
	})
}
