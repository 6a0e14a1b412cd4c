package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/intellitip/internal/adapters/definition"
	"go.trai.ch/intellitip/internal/adapters/fs"
	"go.trai.ch/intellitip/internal/adapters/logger"
	"go.trai.ch/intellitip/internal/adapters/watcher"
	"go.trai.ch/intellitip/internal/core/ports"
)

// NodeID is the unique identifier for the settings loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[*Loader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FileSystemNodeID, definition.NodeID, watcher.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Loader, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			defs, err := graft.Dep[ports.DefinitionLoader](ctx)
			if err != nil {
				return nil, err
			}
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(fsys, defs, w, log), nil
		},
	})
}
