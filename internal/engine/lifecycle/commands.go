package lifecycle

import (
	"context"
	"time"

	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/zerr"
)

// command is one host-facing operation routed through the loop. The
// reply channel is buffered so the loop never blocks on an abandoned
// caller.
type command struct {
	name  string
	apply func(ctx context.Context) error
	reply chan error
}

// do submits a command and waits for the loop to apply it. Submission
// respects the caller's context; once accepted, the command is always
// applied unless the engine stops first.
func (e *Engine) do(ctx context.Context, name string, apply func(ctx context.Context) error) error {
	cmd := command{name: name, apply: apply, reply: make(chan error, 1)}

	select {
	case e.commands <- cmd:
	case <-e.done:
		return zerr.With(domain.ErrEngineClosed, "op", name)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-e.done:
		// The loop may have replied right before exiting.
		select {
		case err := <-cmd.reply:
			return err
		default:
			return zerr.With(domain.ErrEngineClosed, "op", name)
		}
	}
}

// Toggle flips the selection of a known path and reports whether it is
// selected afterwards. Unknown paths fail fast; selection never creates
// phantom entries.
func (e *Engine) Toggle(ctx context.Context, path string) (bool, error) {
	var selected bool
	err := e.do(ctx, "toggle", func(context.Context) error {
		if !e.registry.Has(path) {
			return zerr.With(domain.ErrAssetNotFound, "path", path)
		}
		selected = e.selection.Toggle(path)
		e.persist()
		e.notifySelection()
		return nil
	})
	return selected, err
}

// SetSelected sets the selection of a known path to an explicit value.
func (e *Engine) SetSelected(ctx context.Context, path string, selected bool) error {
	return e.do(ctx, "set-selected", func(context.Context) error {
		if !e.registry.Has(path) {
			return zerr.With(domain.ErrAssetNotFound, "path", path)
		}
		var changed bool
		if selected {
			changed = e.selection.Select(path)
		} else {
			changed = e.selection.Deselect(path)
		}
		if !changed {
			return nil
		}
		e.persist()
		e.notifySelection()
		return nil
	})
}

// MarkTextured records that a model finished texturing. The flag is
// permanent; objects only progress forward.
func (e *Engine) MarkTextured(ctx context.Context, modelPath string) error {
	return e.do(ctx, "mark-textured", func(context.Context) error {
		if !e.registry.Has(modelPath) {
			return zerr.With(domain.ErrAssetNotFound, "path", modelPath)
		}
		if !e.selection.MarkTextured(modelPath) {
			return nil
		}
		e.persist()

		visible := e.selection.IsSelected(modelPath)
		if image, ok := e.assoc.ImageFor(modelPath); ok && e.selection.IsSelected(image) {
			visible = true
		}
		if visible {
			e.notifySelection()
		}
		return nil
	})
}

// ResetSession moves the session boundary for a new generation batch.
// The boundary is strictly monotonic; grants held by the previous
// session become historical and so evictable.
func (e *Engine) ResetSession(ctx context.Context, startedAt time.Time) error {
	return e.do(ctx, "reset-session", func(context.Context) error {
		if err := e.session.Reset(startedAt); err != nil {
			return err
		}
		e.pool.MarkAllHistorical()
		// A new batch lands in bulk; force every view to reconcile with
		// disk on its next activation.
		e.views.InvalidateAll()
		e.persist()
		return nil
	})
}

// Link associates an image with a model explicitly. Both paths must be
// known, and the pair must be an image and a model.
func (e *Engine) Link(ctx context.Context, imagePath, modelPath string) error {
	return e.do(ctx, "link", func(context.Context) error {
		image, ok := e.registry.Get(imagePath)
		if !ok {
			return zerr.With(domain.ErrAssetNotFound, "path", imagePath)
		}
		model, ok := e.registry.Get(modelPath)
		if !ok {
			return zerr.With(domain.ErrAssetNotFound, "path", modelPath)
		}
		if image.Kind != domain.KindImage || model.Kind == domain.KindImage {
			return zerr.With(
				zerr.With(domain.ErrInvalidLink, "image", string(image.Kind)),
				"model", string(model.Kind))
		}
		if err := e.assoc.Link(imagePath, modelPath); err != nil {
			return err
		}
		e.finishLink(imagePath, modelPath)
		e.persist()
		return nil
	})
}

// AutoDetect sweeps every unlinked model and links the ones whose source
// image resolves unambiguously. It returns the number of links created.
func (e *Engine) AutoDetect(ctx context.Context) (int, error) {
	var linked int
	err := e.do(ctx, "auto-detect", func(ctx context.Context) error {
		_, span := e.tracer.Start(ctx, "auto-detect")
		defer span.End()

		for _, model := range e.registry.List() {
			if model.Kind == domain.KindImage {
				continue
			}
			if _, has := e.assoc.ImageFor(model.Path); has {
				continue
			}
			if e.linkModel(model) {
				linked++
			}
		}

		span.SetAttribute("links", linked)
		if linked > 0 {
			e.persist()
		}
		return nil
	})
	return linked, err
}

// CleanupMissing prunes associations and selection entries referencing
// paths no longer in the registry. It returns the number of associations
// removed.
func (e *Engine) CleanupMissing(ctx context.Context) (int, error) {
	var removed int
	err := e.do(ctx, "cleanup-missing", func(ctx context.Context) error {
		_, span := e.tracer.Start(ctx, "cleanup-missing")
		defer span.End()

		removed = e.assoc.CleanupMissing(e.registry.Has)

		selectionChanged := false
		for _, path := range e.selection.Selected() {
			if !e.registry.Has(path) {
				e.selection.Deselect(path)
				selectionChanged = true
			}
		}
		for _, path := range e.selection.Textured() {
			if !e.registry.Has(path) {
				e.selection.RemovePath(path)
				selectionChanged = true
			}
		}

		span.SetAttribute("removed", removed)
		if removed > 0 || selectionChanged {
			e.persist()
			e.notifySelection()
		}
		return nil
	})
	return removed, err
}

// UnifiedObjects returns the merged pipeline view as the loop sees it.
func (e *Engine) UnifiedObjects(ctx context.Context) ([]domain.UnifiedObject, error) {
	var objects []domain.UnifiedObject
	err := e.do(ctx, "unified-objects", func(context.Context) error {
		objects = domain.BuildUnifiedObjects(e.registry, e.assoc, e.selection)
		return nil
	})
	return objects, err
}

// Assets returns a snapshot of the registry in insertion order.
func (e *Engine) Assets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := e.do(ctx, "assets", func(context.Context) error {
		assets = e.registry.List()
		return nil
	})
	return assets, err
}

// Acquire admits one preview materialization for a path. It delegates to
// the resource pool and is safe from any goroutine; it does not pass
// through the command queue.
func (e *Engine) Acquire(path string, sessionScoped bool) (domain.ResourceGrant, error) {
	label := domain.SessionHistorical
	if sessionScoped {
		label = domain.SessionCurrent
	}
	return e.pool.Acquire(path, label)
}

// Release frees a preview grant.
func (e *Engine) Release(handle string) error {
	return e.pool.Release(handle)
}

// TouchGrant refreshes a grant's eviction recency.
func (e *Engine) TouchGrant(handle string) bool {
	return e.pool.Touch(handle)
}
