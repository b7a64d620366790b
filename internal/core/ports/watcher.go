package ports

import (
	"context"
	"iter"

	"go.trai.ch/muse/internal/core/domain"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed away.
	OpRename
)

// String returns the operation label used in logs.
func (o WatchOp) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is one file system change under a configured watch.
type WatchEvent struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Op is the type of change that occurred.
	Op WatchOp
	// Watch is the name of the watch that matched the path.
	Watch string
	// Kind is the asset kind the watch assigns to matching files.
	Kind domain.AssetKind
}

// Watcher defines the interface for watching the configured directories.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching all configured directories. Directories
	// that do not exist yet are retried in the background until the
	// context is cancelled.
	Start(ctx context.Context) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of matched file system events.
	Events() iter.Seq[WatchEvent]
}
