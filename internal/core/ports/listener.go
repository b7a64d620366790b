package ports

import "go.trai.ch/muse/internal/core/domain"

// Listener is the abstraction for presentation-side consumers of engine
// state changes. It decouples the lifecycle loop from whatever surface
// renders discoveries and selection summaries.
//
// Callbacks run on the engine loop goroutine and must not block; a slow
// listener stalls event application for the whole pipeline.
//
//go:generate go run go.uber.org/mock/mockgen -source=listener.go -destination=mocks/mock_listener.go -package=mocks
type Listener interface {
	// OnAssetDiscovered is called when a new asset enters the registry.
	// label tells whether the asset belongs to the current session or
	// to historical output.
	OnAssetDiscovered(asset domain.Asset, label domain.SessionLabel)

	// OnAssociationChanged is called when an image and a model become
	// linked, whether by the heuristic or an explicit link call.
	OnAssociationChanged(imagePath, modelPath string)

	// OnSelectionChanged is called with the full unified object list
	// after every mutation that changes it.
	OnSelectionChanged(objects []domain.UnifiedObject)
}
