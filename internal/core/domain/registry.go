package domain

import "time"

// Registry tracks every asset discovered since startup, keyed by path.
// Insertion order is preserved so listings are stable across reads.
//
// The registry is not safe for concurrent use; the lifecycle engine owns
// it and applies all mutations from a single goroutine.
type Registry struct {
	assets map[string]Asset
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[string]Asset)}
}

// Add records a newly discovered asset. If the path is already known the
// call is a no-op and the stored asset is returned unchanged.
// The second return reports whether the asset was actually added.
func (r *Registry) Add(asset Asset) (Asset, bool) {
	if existing, ok := r.assets[asset.Path]; ok {
		return existing, false
	}
	r.assets[asset.Path] = asset
	r.order = append(r.order, asset.Path)
	return asset, true
}

// Touch advances the observed modification time and fingerprint of a known
// asset. Timestamps only move forward; a stale observation is ignored.
// The return reports whether the stored asset changed.
func (r *Registry) Touch(path string, modifiedAt time.Time, fingerprint uint64) bool {
	asset, ok := r.assets[path]
	if !ok {
		return false
	}
	changed := false
	if modifiedAt.After(asset.ModifiedAt) {
		asset.ModifiedAt = modifiedAt
		changed = true
	}
	if fingerprint != 0 && fingerprint != asset.Fingerprint {
		asset.Fingerprint = fingerprint
		changed = true
	}
	if changed {
		r.assets[path] = asset
	}
	return changed
}

// Remove forgets an asset. It reports whether the path was known.
func (r *Registry) Remove(path string) bool {
	if _, ok := r.assets[path]; !ok {
		return false
	}
	delete(r.assets, path)
	for i, p := range r.order {
		if p == path {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the asset stored for path.
func (r *Registry) Get(path string) (Asset, bool) {
	asset, ok := r.assets[path]
	return asset, ok
}

// Has reports whether path is known.
func (r *Registry) Has(path string) bool {
	_, ok := r.assets[path]
	return ok
}

// Len returns the number of tracked assets.
func (r *Registry) Len() int {
	return len(r.assets)
}

// List returns all assets in insertion order.
func (r *Registry) List() []Asset {
	out := make([]Asset, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, r.assets[path])
	}
	return out
}

// ListByKind returns all assets of the given kind in insertion order.
func (r *Registry) ListByKind(kind AssetKind) []Asset {
	var out []Asset
	for _, path := range r.order {
		if asset := r.assets[path]; asset.Kind == kind {
			out = append(out, asset)
		}
	}
	return out
}

// Paths returns the tracked paths in insertion order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
