package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// ViewState is the scan bookkeeping for one registered view.
type ViewState struct {
	Name     string
	LastScan time.Time
	Dirty    bool
	Scans    uint64
}

// ViewCaches decides when an activated view needs a fresh directory scan.
// A view scans at most once per interval unless it was explicitly
// invalidated, in which case the next activation always scans.
//
// Like the registry, this state is owned by the engine loop and is not
// safe for concurrent use.
type ViewCaches struct {
	interval time.Duration
	views    map[string]*ViewState
	order    []string
}

// NewViewCaches creates the view bookkeeping with the given scan interval.
func NewViewCaches(interval time.Duration) *ViewCaches {
	return &ViewCaches{
		interval: interval,
		views:    make(map[string]*ViewState),
	}
}

// Register adds a view by name. Registering an existing name is a no-op.
func (v *ViewCaches) Register(name string) {
	if _, ok := v.views[name]; ok {
		return
	}
	v.views[name] = &ViewState{Name: name, Dirty: true}
	v.order = append(v.order, name)
}

// Names returns the registered view names in registration order.
func (v *ViewCaches) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// NeedsScan reports whether activating the view at now should trigger a
// scan: the view has never scanned, was invalidated, or its last scan is
// older than the interval.
func (v *ViewCaches) NeedsScan(name string, now time.Time) (bool, error) {
	state, ok := v.views[name]
	if !ok {
		return false, zerr.With(ErrViewNotFound, "view", name)
	}
	if state.Dirty {
		return true, nil
	}
	if state.LastScan.IsZero() {
		return true, nil
	}
	return now.Sub(state.LastScan) >= v.interval, nil
}

// MarkScanned records a completed scan for the view.
func (v *ViewCaches) MarkScanned(name string, at time.Time) error {
	state, ok := v.views[name]
	if !ok {
		return zerr.With(ErrViewNotFound, "view", name)
	}
	state.LastScan = at
	state.Dirty = false
	state.Scans++
	return nil
}

// Invalidate marks the view so its next activation scans regardless of
// the interval.
func (v *ViewCaches) Invalidate(name string) error {
	state, ok := v.views[name]
	if !ok {
		return zerr.With(ErrViewNotFound, "view", name)
	}
	state.Dirty = true
	return nil
}

// InvalidateAll marks every view dirty.
func (v *ViewCaches) InvalidateAll() {
	for _, state := range v.views {
		state.Dirty = true
	}
}

// State returns a copy of the bookkeeping for one view.
func (v *ViewCaches) State(name string) (ViewState, bool) {
	state, ok := v.views[name]
	if !ok {
		return ViewState{}, false
	}
	return *state, true
}
