package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/adapters/config"
	"go.trai.ch/muse/internal/adapters/logger"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
)

// NodeID is the unique identifier for the file watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.PipelineNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			pipeline, err := graft.Dep[*domain.Pipeline](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(pipeline, log)
		},
	})
}
