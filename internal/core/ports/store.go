package ports

import "go.trai.ch/muse/internal/core/domain"

// StateStore defines the interface for persisting the state document.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Load reads the persisted state document.
	// Returns nil, nil if no document exists yet.
	Load() (*domain.StateDocument, error)

	// Save writes the state document atomically.
	Save(doc domain.StateDocument) error
}
