package ports

import (
	"context"

	"go.trai.ch/muse/internal/core/domain"
)

// Scanner enumerates and inspects files under a watch.
//
//go:generate go run go.uber.org/mock/mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks
type Scanner interface {
	// Scan enumerates every file under the watch directory that matches
	// the watch patterns, returning fully populated assets.
	Scan(ctx context.Context, spec domain.WatchSpec) ([]domain.Asset, error)

	// Inspect stats and fingerprints a single file.
	Inspect(path string, kind domain.AssetKind) (domain.Asset, error)

	// Exists reports whether path still exists on disk.
	Exists(path string) bool
}
