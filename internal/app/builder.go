package app

import (
	"go.trai.ch/muse/internal/core/ports"
)

// Components contains the initialized application components.
// This struct provides controlled access to components needed by the CLI
// layer. It deliberately carries no pipeline: resolving one requires a
// muse.yaml, and commands like version must work without it.
type Components struct {
	App    *App
	Logger ports.Logger
}
