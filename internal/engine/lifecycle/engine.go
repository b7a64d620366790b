// Package lifecycle implements the asset lifecycle engine: a single
// serialized loop that consumes discovery events and host commands, and
// owns every piece of mutable pipeline state except the resource pool.
package lifecycle

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine drives the discovery pipeline. Events and commands are applied
// by one goroutine in a fixed order: registry, session classification,
// associations, selection, listener callbacks. Because that loop is the
// only writer, none of the domain state it owns carries a lock; the
// resource pool is the deliberate exception and is safe to call from any
// goroutine.
type Engine struct {
	pipeline *domain.Pipeline
	scanner  ports.Scanner
	store    ports.StateStore
	logger   ports.Logger
	tracer   ports.Tracer

	registry  *domain.Registry
	session   *domain.Session
	assoc     *domain.Associations
	selection *domain.Selection
	views     *domain.ViewCaches
	pool      *domain.ResourcePool

	inbox    chan ports.WatchEvent
	commands chan command
	waiters  map[string][]chan []domain.Asset

	listeners []ports.Listener

	started atomic.Bool
	done    chan struct{}

	counters counters
}

type counters struct {
	events     atomic.Uint64
	discovered atomic.Uint64
	scans      atomic.Uint64
	autolinks  atomic.Uint64
	persists   atomic.Uint64
	evictions  atomic.Uint64
}

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	// Events is the number of discovery events applied.
	Events uint64
	// Discovered is the number of assets that entered the registry.
	Discovered uint64
	// Scans is the number of completed view scans.
	Scans uint64
	// Autolinks is the number of heuristic links created.
	Autolinks uint64
	// Persists is the number of successful state document writes.
	Persists uint64
	// Evictions is the number of preview grants evicted from the pool.
	Evictions uint64
	// Pool is the resource pool's own snapshot.
	Pool domain.PoolStats
}

// New creates an engine for the pipeline and restores persisted state.
// A missing state document starts fresh; a corrupt one is a hard error.
func New(
	pipeline *domain.Pipeline,
	scanner ports.Scanner,
	store ports.StateStore,
	logger ports.Logger,
	tracer ports.Tracer,
) (*Engine, error) {
	inboxSize := pipeline.InboxSize
	if inboxSize <= 0 {
		inboxSize = domain.DefaultInboxSize
	}

	e := &Engine{
		pipeline:  pipeline,
		scanner:   scanner,
		store:     store,
		logger:    logger,
		tracer:    tracer,
		registry:  domain.NewRegistry(),
		assoc:     domain.NewAssociations(),
		selection: domain.NewSelection(),
		views:     domain.NewViewCaches(pipeline.ScanInterval),
		inbox:     make(chan ports.WatchEvent, inboxSize),
		commands:  make(chan command),
		waiters:   make(map[string][]chan []domain.Asset),
		done:      make(chan struct{}),
	}

	pool, err := domain.NewResourcePool(pipeline.SessionQuota, pipeline.TotalQuota, e.onEvict)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	for _, spec := range pipeline.Watches {
		e.views.Register(spec.Name)
	}

	doc, err := store.Load()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to restore state")
	}
	sessionStart := time.Now()
	if doc != nil {
		if err := doc.Apply(e.assoc, e.selection); err != nil {
			return nil, zerr.Wrap(err, "failed to restore state")
		}
		// A restart continues the persisted session; only an explicit
		// reset begins a new batch.
		if !doc.SessionStart.IsZero() {
			sessionStart = doc.SessionStart
		}
	}
	e.session = domain.NewSession(sessionStart)

	return e, nil
}

// AddListener registers a presentation-side listener. Listeners must be
// added before Start; callbacks run on the loop goroutine.
func (e *Engine) AddListener(listener ports.Listener) {
	e.listeners = append(e.listeners, listener)
}

// Inbox is the discovery event channel. Producers block when it is full;
// discovery is never dropped.
func (e *Engine) Inbox() chan<- ports.WatchEvent {
	return e.inbox
}

// Start launches the consumer loop. The loop runs until ctx is
// cancelled; commands submitted after that fail with ErrEngineClosed.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return domain.ErrEngineAlreadyStarted
	}
	go e.run(ctx)
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-e.inbox:
			e.applyEvent(ctx, event)
		case cmd := <-e.commands:
			// Discoveries queued before the command are applied first
			// so the command sees every completed send.
			e.drainInbox(ctx)
			cmd.reply <- cmd.apply(ctx)
		}
	}
}

func (e *Engine) drainInbox(ctx context.Context) {
	for {
		select {
		case event := <-e.inbox:
			e.applyEvent(ctx, event)
		default:
			return
		}
	}
}

// applyEvent applies one discovery event in the fixed order: registry,
// classification, association, selection, listeners.
func (e *Engine) applyEvent(ctx context.Context, event ports.WatchEvent) {
	e.counters.events.Add(1)

	_, span := e.tracer.Start(ctx, "apply-event")
	defer span.End()
	span.SetAttribute("path", event.Path)
	span.SetAttribute("op", event.Op.String())

	switch event.Op {
	case ports.OpRemove, ports.OpRename:
		e.applyRemoval(event)
	default:
		e.applyDiscovery(event)
	}
}

func (e *Engine) applyDiscovery(event ports.WatchEvent) {
	asset, err := e.scanner.Inspect(event.Path, event.Kind)
	if err != nil {
		// The file vanished between the event and the stat, or is not
		// readable yet. The watcher will tell us again if it matters.
		e.logger.Warn(fmt.Sprintf("could not inspect %s: %v", event.Path, err))
		return
	}

	var subject domain.Asset
	if _, known := e.registry.Get(event.Path); known {
		if !e.registry.Touch(event.Path, asset.ModifiedAt, asset.Fingerprint) {
			// Known and unchanged: a no-op past the registry step.
			return
		}
		subject, _ = e.registry.Get(event.Path)
	} else {
		stored, isNew := e.registry.Add(asset)
		subject = stored
		if isNew {
			e.counters.discovered.Add(1)
			e.notifyDiscovered(stored, e.session.Classify(stored.ModifiedAt))
		}
	}

	if e.autolink(subject) {
		e.persist()
	}
}

func (e *Engine) applyRemoval(event ports.WatchEvent) {
	if !e.registry.Remove(event.Path) {
		return
	}

	removedLinks := e.assoc.CleanupMissing(e.registry.Has)
	selectionChanged := e.selection.RemovePath(event.Path)

	if removedLinks > 0 || selectionChanged {
		e.persist()
		e.notifySelection()
	}
}

// autolink runs the heuristic for a freshly discovered or changed asset.
// The rule is model-anchored: a model links only when exactly one
// unlinked image matches it. A new image can resolve models that had no
// match before. It reports whether any link was created.
func (e *Engine) autolink(asset domain.Asset) bool {
	if asset.Kind == domain.KindImage {
		if _, ok := e.assoc.ModelFor(asset.Path); ok {
			return false
		}
		linked := false
		for _, model := range e.registry.List() {
			if model.Kind == domain.KindImage {
				continue
			}
			if _, has := e.assoc.ImageFor(model.Path); has {
				continue
			}
			if !domain.StemsMatch(asset.Stem(), model.Stem()) {
				continue
			}
			if e.linkModel(model) {
				linked = true
			}
		}
		return linked
	}

	if _, ok := e.assoc.ImageFor(asset.Path); ok {
		return false
	}
	return e.linkModel(asset)
}

// linkModel resolves the unique source image for a model and links them.
func (e *Engine) linkModel(model domain.Asset) bool {
	image, ok := e.assoc.AutolinkCandidate(model, e.registry.ListByKind(domain.KindImage), e.pipeline.AutolinkWindow)
	if !ok {
		return false
	}
	if err := e.assoc.Link(image.Path, model.Path); err != nil {
		return false
	}
	e.counters.autolinks.Add(1)
	e.finishLink(image.Path, model.Path)
	return true
}

// finishLink records the bookkeeping shared by heuristic and explicit
// links: listeners hear about the link, and a model joining a selected
// image is pulled into the selection.
func (e *Engine) finishLink(imagePath, modelPath string) {
	e.notifyAssociation(imagePath, modelPath)

	if e.selection.IsSelected(imagePath) {
		e.selection.Select(modelPath)
	}
	if e.selection.IsSelected(imagePath) || e.selection.IsSelected(modelPath) {
		e.notifySelection()
	}
}

// persist writes the whole state document. Failures are logged, not
// propagated: the engine keeps serving from memory and the next
// mutation retries.
func (e *Engine) persist() {
	doc := domain.SnapshotState(e.session, e.assoc, e.selection)
	if err := e.store.Save(doc); err != nil {
		e.logger.Error(zerr.Wrap(err, "failed to persist state"))
		return
	}
	e.counters.persists.Add(1)
}

func (e *Engine) onEvict(grant domain.ResourceGrant) {
	e.counters.evictions.Add(1)
	e.logger.Info(fmt.Sprintf("evicted preview resource for %s", grant.Path))
}

func (e *Engine) notifyDiscovered(asset domain.Asset, label domain.SessionLabel) {
	for _, listener := range e.listeners {
		listener.OnAssetDiscovered(asset, label)
	}
}

func (e *Engine) notifyAssociation(imagePath, modelPath string) {
	for _, listener := range e.listeners {
		listener.OnAssociationChanged(imagePath, modelPath)
	}
}

func (e *Engine) notifySelection() {
	objects := domain.BuildUnifiedObjects(e.registry, e.assoc, e.selection)
	for _, listener := range e.listeners {
		listener.OnSelectionChanged(objects)
	}
}

// Stats returns a snapshot of the engine's counters. Safe from any
// goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		Events:     e.counters.events.Load(),
		Discovered: e.counters.discovered.Load(),
		Scans:      e.counters.scans.Load(),
		Autolinks:  e.counters.autolinks.Load(),
		Persists:   e.counters.persists.Load(),
		Evictions:  e.counters.evictions.Load(),
		Pool:       e.pool.Stats(),
	}
}
