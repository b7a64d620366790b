// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/muse/internal/adapters/config"
	_ "go.trai.ch/muse/internal/adapters/logger"
	_ "go.trai.ch/muse/internal/adapters/scan"
	_ "go.trai.ch/muse/internal/adapters/store"
	_ "go.trai.ch/muse/internal/adapters/telemetry"
	_ "go.trai.ch/muse/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/muse/internal/app"
	_ "go.trai.ch/muse/internal/engine/lifecycle"
)
