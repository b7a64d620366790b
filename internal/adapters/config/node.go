package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/adapters/logger"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// NodeID is the unique identifier for the config loader Graft node.
	NodeID graft.ID = "adapter.config_loader"
	// PipelineNodeID is the unique identifier for the loaded pipeline Graft node.
	PipelineNodeID graft.ID = "adapter.pipeline"
)

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	// The pipeline is loaded on first use: honor a path pinned on the
	// context, otherwise discover muse.yaml upward from the working
	// directory. Then load and validate it.
	graft.Register(graft.Node[*domain.Pipeline]{
		ID:        PipelineNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (*domain.Pipeline, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			path, ok := PathFromContext(ctx)
			if ok {
				// Pinned paths may be relative to the working directory;
				// the pipeline root derives from the config path, so it
				// must be absolute before loading.
				path, err = filepath.Abs(path)
				if err != nil {
					return nil, zerr.Wrap(err, "failed to resolve config path")
				}
			} else {
				cwd, err := os.Getwd()
				if err != nil {
					return nil, zerr.Wrap(err, "failed to resolve working directory")
				}
				path, err = loader.Discover(cwd)
				if err != nil {
					return nil, err
				}
			}
			return loader.Load(path)
		},
	})
}
