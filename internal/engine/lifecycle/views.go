package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

// Activate returns the assets of a view, scanning its directory first if
// the cached state is stale. A fresh view answers without touching the
// file system; concurrent activations of a stale view share one scan.
func (e *Engine) Activate(ctx context.Context, view string) ([]domain.Asset, error) {
	waiter := make(chan []domain.Asset, 1)

	err := e.do(ctx, "activate", func(ctx context.Context) error {
		needsScan, err := e.views.NeedsScan(view, time.Now())
		if err != nil {
			return err
		}
		if !needsScan {
			waiter <- e.viewAssets(view)
			return nil
		}
		if _, inFlight := e.waiters[view]; !inFlight {
			spec, _ := e.pipeline.Watch(view)
			go e.scanView(ctx, spec)
		}
		e.waiters[view] = append(e.waiters[view], waiter)
		return nil
	})
	if err != nil {
		return nil, err
	}

	select {
	case assets := <-waiter:
		return assets, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return nil, zerr.With(domain.ErrEngineClosed, "op", "activate")
	}
}

// Invalidate marks a view stale so its next activation rescans.
func (e *Engine) Invalidate(ctx context.Context, view string) error {
	return e.do(ctx, "invalidate", func(context.Context) error {
		return e.views.Invalidate(view)
	})
}

// scanView enumerates a view's directory off the loop and feeds the
// results through the inbox as ordinary discovery events. Every event is
// sent before the completion command, so the loop has applied all of
// them by the time the completion runs.
func (e *Engine) scanView(ctx context.Context, spec domain.WatchSpec) {
	ctx, span := e.tracer.Start(ctx, "view-scan")
	defer span.End()
	span.SetAttribute("view", spec.Name)

	assets, err := e.scanner.Scan(ctx, spec)
	if err != nil {
		span.RecordError(err)
		e.completeScan(spec.Name, err)
		return
	}
	span.SetAttribute("assets", len(assets))

	for _, asset := range assets {
		event := ports.WatchEvent{
			Path:  asset.Path,
			Op:    ports.OpCreate,
			Watch: spec.Name,
			Kind:  spec.Kind,
		}
		select {
		case e.inbox <- event:
		case <-ctx.Done():
			e.completeScan(spec.Name, ctx.Err())
			return
		}
	}

	e.completeScan(spec.Name, nil)
}

// completeScan hands the scan outcome back to the loop. The reply is
// buffered and never read; the scan goroutine has nothing left to do.
func (e *Engine) completeScan(view string, scanErr error) {
	cmd := command{
		name:  "scan-complete",
		reply: make(chan error, 1),
		apply: func(context.Context) error {
			e.finishScan(view, scanErr)
			return nil
		},
	}
	select {
	case e.commands <- cmd:
	case <-e.done:
	}
}

// finishScan runs on the loop after a scan ends. A successful scan marks
// the view fresh; a failed one leaves it stale so the next activation
// retries. Either way every waiter gets the current snapshot.
func (e *Engine) finishScan(view string, scanErr error) {
	if scanErr != nil {
		if !errors.Is(scanErr, context.Canceled) {
			e.logger.Error(zerr.With(zerr.Wrap(scanErr, "view scan failed"), "view", view))
		}
	} else if err := e.views.MarkScanned(view, time.Now()); err != nil {
		e.logger.Error(zerr.Wrap(err, "failed to record scan"))
	} else {
		e.counters.scans.Add(1)
	}

	waiters := e.waiters[view]
	delete(e.waiters, view)
	if len(waiters) == 0 {
		return
	}
	assets := e.viewAssets(view)
	for _, waiter := range waiters {
		waiter <- assets
	}
}

// viewAssets derives a view's snapshot from the registry: the tracked
// assets under the view's directory that match its patterns, in
// registry insertion order. Views never hold their own asset lists.
func (e *Engine) viewAssets(view string) []domain.Asset {
	spec, ok := e.pipeline.Watch(view)
	if !ok {
		return nil
	}
	dir := filepath.Clean(spec.Dir)

	var assets []domain.Asset
	for _, asset := range e.registry.List() {
		if filepath.Dir(asset.Path) != dir {
			continue
		}
		if !spec.Match(filepath.Base(asset.Path)) {
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}
