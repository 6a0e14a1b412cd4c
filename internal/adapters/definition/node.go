package definition

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/intellitip/internal/adapters/fs"
	"go.trai.ch/intellitip/internal/core/ports"
)

// NodeID is the unique identifier for the definition loader Graft node.
const NodeID graft.ID = "adapter.definition"

func init() {
	graft.Register(graft.Node[ports.DefinitionLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FileSystemNodeID},
		Run: func(ctx context.Context) (ports.DefinitionLoader, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewDefaultChain(fsys), nil
		},
	})
}
