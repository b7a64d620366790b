package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/muse/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/muse/internal/adapters/store"   //nolint:depguard // Wired in app layer
	"go.trai.ch/muse/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/muse/internal/engine/lifecycle"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
	// RuntimeNodeID is the unique identifier for the pipeline runtime Graft node.
	RuntimeNodeID graft.ID = "app.runtime"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})

	// Runtime Node. Everything below it needs a loaded pipeline, so it
	// is executed per command rather than at startup.
	graft.Register(graft.Node[*Runtime]{
		ID:        RuntimeNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.PipelineNodeID,
			lifecycle.NodeID,
			watcher.NodeID,
			store.NodeID,
		},
		Run: runRuntimeNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    application,
		Logger: log,
	}, nil
}

func runRuntimeNode(ctx context.Context) (*Runtime, error) {
	pipeline, err := graft.Dep[*domain.Pipeline](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[*lifecycle.Engine](ctx)
	if err != nil {
		return nil, err
	}

	watch, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	stateStore, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Pipeline: pipeline,
		Engine:   engine,
		Watcher:  watch,
		Store:    stateStore,
	}, nil
}
