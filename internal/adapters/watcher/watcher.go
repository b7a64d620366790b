// Package watcher implements file system watching for the configured
// pipeline directories using fsnotify.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements ports.Watcher over the flat watch directories of a
// pipeline. Directories that do not exist yet are retried on a timer;
// once one appears its current contents are announced as create events
// so nothing discovered while unwatched is lost.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	logger        ports.Logger
	dirSpecs      map[string][]domain.WatchSpec
	dirs          []string
	pending       map[string]struct{}
	retryInterval time.Duration
	events        chan ports.WatchEvent
}

// NewWatcher creates a watcher for the pipeline's watch directories.
func NewWatcher(pipeline *domain.Pipeline, logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherSetupFailed.Error())
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		logger:        logger,
		dirSpecs:      make(map[string][]domain.WatchSpec),
		pending:       make(map[string]struct{}),
		retryInterval: domain.DefaultRetryInterval,
		events:        make(chan ports.WatchEvent, eventChannelBuffer),
	}
	for _, spec := range pipeline.Watches {
		if _, ok := w.dirSpecs[spec.Dir]; !ok {
			w.dirs = append(w.dirs, spec.Dir)
		}
		w.dirSpecs[spec.Dir] = append(w.dirSpecs[spec.Dir], spec)
	}
	return w, nil
}

// Start begins watching every configured directory. Missing directories
// are not an error; they stay pending and are retried until the context
// is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.pending[dir] = struct{}{}
				w.logger.Warn(fmt.Sprintf("watch dir %s missing, will retry", dir))
				continue
			}
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherSetupFailed.Error()), "dir", dir)
		}
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of matched file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// run owns all sends on the event channel: fsnotify events, fsnotify
// errors and the pending-directory retry timer are multiplexed here.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(ctx, event) {
				return
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("file system error: %v", err))
		case <-ticker.C:
			if !w.retryPending(ctx) {
				return
			}
		}
	}
}

// handleEvent converts an fsnotify event, matches it against the watch
// specs for its directory, and forwards it. The return is false when the
// context ended mid-send.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	op, ok := convertOp(event.Op)
	if !ok {
		return true
	}

	// Watches are flat: events for directories themselves are ignored.
	if op == ports.OpCreate || op == ports.OpWrite {
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return true
		}
	}

	specs := w.dirSpecs[filepath.Dir(event.Name)]
	for _, spec := range specs {
		if !spec.Match(filepath.Base(event.Name)) {
			continue
		}
		return w.emit(ctx, ports.WatchEvent{
			Path:  event.Name,
			Op:    op,
			Watch: spec.Name,
			Kind:  spec.Kind,
		})
	}
	return true
}

// retryPending attempts to watch directories that were missing. When one
// appears, its existing files are announced as create events.
func (w *Watcher) retryPending(ctx context.Context) bool {
	for dir := range w.pending {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn(fmt.Sprintf("failed to watch %s: %v", dir, err))
			continue
		}
		delete(w.pending, dir)
		w.logger.Info(fmt.Sprintf("watch dir %s appeared", dir))

		if !w.announceExisting(ctx, dir) {
			return false
		}
	}
	return true
}

// announceExisting emits create events for files already present in a
// directory that just became watchable.
func (w *Watcher) announceExisting(ctx context.Context, dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn(fmt.Sprintf("failed to list %s: %v", dir, err))
		return true
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, spec := range w.dirSpecs[dir] {
			if !spec.Match(entry.Name()) {
				continue
			}
			ok := w.emit(ctx, ports.WatchEvent{
				Path:  filepath.Join(dir, entry.Name()),
				Op:    ports.OpCreate,
				Watch: spec.Name,
				Kind:  spec.Kind,
			})
			if !ok {
				return false
			}
			break
		}
	}
	return true
}

func (w *Watcher) emit(ctx context.Context, event ports.WatchEvent) bool {
	select {
	case w.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op&fsnotify.Write == fsnotify.Write:
		return ports.OpWrite, true
	case op&fsnotify.Create == fsnotify.Create:
		return ports.OpCreate, true
	case op&fsnotify.Remove == fsnotify.Remove:
		return ports.OpRemove, true
	case op&fsnotify.Rename == fsnotify.Rename:
		return ports.OpRename, true
	default:
		return 0, false
	}
}
