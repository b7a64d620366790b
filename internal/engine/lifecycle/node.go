package lifecycle

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/muse/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/muse/internal/adapters/scan"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/muse/internal/adapters/store"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/muse/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
)

// NodeID is the unique identifier for the lifecycle engine Graft node.
const NodeID graft.ID = "engine.lifecycle"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.PipelineNodeID,
			scan.NodeID,
			store.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			pipeline, err := graft.Dep[*domain.Pipeline](ctx)
			if err != nil {
				return nil, err
			}
			scanner, err := graft.Dep[ports.Scanner](ctx)
			if err != nil {
				return nil, err
			}
			stateStore, err := graft.Dep[ports.StateStore](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(pipeline, scanner, stateStore, log, tracer)
		},
	})
}
