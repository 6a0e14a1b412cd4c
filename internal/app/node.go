package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/intellitip/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/engine/hover"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.FileSystemNodeID,
			fs.HasherNodeID,
			hover.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[*config.Loader](ctx)
			if err != nil {
				return nil, err
			}

			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[*fs.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			svc, err := graft.Dep[*hover.Service](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, fsys, svc, hasher, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			cache.NodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[*config.Loader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.EntityCache](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	// Closed in reverse: subscriptions first, then the watcher, then telemetry.
	closers := []func(context.Context) error{
		func(context.Context) error { return w.Close() },
		func(context.Context) error { return loader.Close() },
		func(context.Context) error { return store.Close() },
	}
	if shutdowner, ok := tracer.(interface{ Shutdown(context.Context) error }); ok {
		closers = append([]func(context.Context) error{shutdowner.Shutdown}, closers...)
	}

	return NewComponents(a, log, closers...), nil
}
