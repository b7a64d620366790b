package store

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/adapters/config"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
)

// NodeID is the unique identifier for the state store Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.StateStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.PipelineNodeID},
		Run: func(ctx context.Context) (ports.StateStore, error) {
			pipeline, err := graft.Dep[*domain.Pipeline](ctx)
			if err != nil {
				return nil, err
			}
			s, err := NewStore(nil)
			if err != nil {
				return nil, err
			}
			if err := s.SetPath(pipeline.StatePath); err != nil {
				return nil, err
			}
			return s, nil
		},
	})
}
