package logger

import (
	"context"
	"sync"

	"github.com/grindlemire/graft"
	"go.trai.ch/muse/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// defaultLogger is shared by every graph execution in the process. The
// output redirect must reach all holders, so there is exactly one sink.
var defaultLogger = sync.OnceValue(New)

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return defaultLogger(), nil
		},
	})
}
