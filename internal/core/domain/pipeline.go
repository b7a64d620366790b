package domain

import (
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
)

// Pipeline defaults applied when the configuration leaves a knob unset.
const (
	// DefaultAutolinkWindow is how far apart an image and model may be
	// modified and still auto-associate.
	DefaultAutolinkWindow = 15 * time.Minute

	// DefaultScanInterval is the minimum gap between scans of one view.
	DefaultScanInterval = 30 * time.Second

	// DefaultInboxSize is the capacity of the engine event inbox.
	DefaultInboxSize = 256

	// DefaultSessionQuota is the per-session resource pool quota.
	DefaultSessionQuota = 4

	// DefaultTotalQuota is the overall resource pool quota.
	DefaultTotalQuota = 12

	// DefaultRetryInterval is how often the watcher retries a missing
	// watch directory.
	DefaultRetryInterval = 5 * time.Second
)

// WatchSpec is one watched directory: where to look, which file names
// count, and what kind of asset a match becomes. Each watch doubles as a
// named view that can be activated for a lazy rescan.
type WatchSpec struct {
	// Name identifies the watch and its view.
	Name string

	// Dir is the directory to watch. It does not have to exist yet;
	// the watcher retries until it appears.
	Dir string

	// Patterns are glob patterns matched against base names.
	// An empty list matches everything.
	Patterns []string

	// Kind is the asset kind assigned to matching files.
	Kind AssetKind
}

// Match reports whether a base name falls under this watch.
func (w WatchSpec) Match(name string) bool {
	if len(w.Patterns) == 0 {
		return true
	}
	for _, pattern := range w.Patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Pipeline is the validated runtime configuration: the watched
// directories plus the tuning knobs for association, scanning, the event
// inbox and the resource pool.
type Pipeline struct {
	// Root is the project root all relative paths resolve against.
	Root string

	// Watches are the watched directories in configuration order.
	Watches []WatchSpec

	// StatePath is where the state document lives.
	StatePath string

	// AutolinkWindow bounds the modification time distance for
	// automatic association. Zero disables the window check.
	AutolinkWindow time.Duration

	// ScanInterval is the minimum gap between scans of one view.
	ScanInterval time.Duration

	// InboxSize is the engine inbox capacity.
	InboxSize int

	// SessionQuota and TotalQuota bound the resource pool.
	SessionQuota int
	TotalQuota   int
}

// Validate checks the pipeline invariants: at least one watch, unique
// watch names, known kinds and sane quotas.
func (p *Pipeline) Validate() error {
	if len(p.Watches) == 0 {
		return zerr.Wrap(ErrConfigInvalid, "no watches configured")
	}
	seen := make(map[string]struct{}, len(p.Watches))
	for _, watch := range p.Watches {
		if watch.Name == "" {
			return zerr.Wrap(ErrConfigInvalid, "watch name must not be empty")
		}
		if _, ok := seen[watch.Name]; ok {
			return zerr.With(ErrDuplicateWatch, "name", watch.Name)
		}
		seen[watch.Name] = struct{}{}
		if watch.Dir == "" {
			return zerr.With(zerr.Wrap(ErrConfigInvalid, "watch dir must not be empty"),
				"name", watch.Name)
		}
		if _, err := ParseAssetKind(string(watch.Kind)); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid watch kind"), "name", watch.Name)
		}
		for _, pattern := range watch.Patterns {
			if _, err := filepath.Match(pattern, "probe"); err != nil {
				return zerr.With(zerr.With(zerr.Wrap(ErrConfigInvalid, "bad watch pattern"),
					"name", watch.Name),
					"pattern", pattern)
			}
		}
	}
	if p.SessionQuota <= 0 || p.TotalQuota <= 0 || p.SessionQuota > p.TotalQuota {
		return zerr.With(zerr.With(ErrInvalidQuota,
			"session", p.SessionQuota),
			"total", p.TotalQuota)
	}
	if p.InboxSize <= 0 {
		return zerr.Wrap(ErrConfigInvalid, "inbox size must be positive")
	}
	return nil
}

// Watch returns the spec with the given name.
func (p *Pipeline) Watch(name string) (WatchSpec, bool) {
	for _, watch := range p.Watches {
		if watch.Name == name {
			return watch, true
		}
	}
	return WatchSpec{}, false
}
