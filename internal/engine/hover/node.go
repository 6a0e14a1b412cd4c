package hover

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/intellitip/internal/adapters/cache"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/intellitip/internal/adapters/definition" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/intellitip/internal/adapters/fs"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/intellitip/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/intellitip/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/engine/modcache"
	"go.trai.ch/intellitip/internal/engine/render"
	"go.trai.ch/intellitip/internal/engine/resolve"
	"go.trai.ch/intellitip/internal/engine/trigger"
)

// NodeID is the unique identifier for the hover service Graft node.
const NodeID graft.ID = "engine.hover"

func init() {
	graft.Register(graft.Node[*Service]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cache.NodeID,
			fs.FileSystemNodeID,
			definition.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Service, error) {
			store, err := graft.Dep[ports.EntityCache](ctx)
			if err != nil {
				return nil, err
			}

			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			defs, err := graft.Dep[ports.DefinitionLoader](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewService(
				trigger.NewMatcher(),
				resolve.NewResolver(),
				modcache.New(store, fsys, defs, log),
				render.NewRenderer(fsys, defs, log),
				render.NewLinker(fsys, log),
				tracer,
				log,
			), nil
		},
	})
}
