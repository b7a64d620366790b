package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// ResourceGrant is a live admission into the resource pool. The handle is
// the caller's key for touch and release.
type ResourceGrant struct {
	Handle     string
	Path       string
	Label      SessionLabel
	AdmittedAt time.Time
}

// EvictFunc is called for every grant the pool evicts to make room.
// It runs outside the pool lock.
type EvictFunc func(ResourceGrant)

// PoolStats is a point-in-time snapshot of pool activity.
type PoolStats struct {
	Admitted uint64
	Rejected uint64
	Evicted  uint64
	InUse    int
	Session  int
}

// ResourcePool bounds how many expensive resources are live at once.
// Current-session requests may evict the least recently used historical
// grant when the pool is full; historical requests never evict anything.
//
// The pool is the one component shared across goroutines, so all state
// is guarded by a mutex.
type ResourcePool struct {
	mu           sync.Mutex
	sessionQuota int
	totalQuota   int
	grants       map[string]ResourceGrant
	recency      []string // handles, least recently used first
	onEvict      EvictFunc
	now          func() time.Time

	admitted uint64
	rejected uint64
	evicted  uint64
}

// NewResourcePool creates a pool with the given quotas. The session quota
// bounds current-session grants and must not exceed the total quota.
func NewResourcePool(sessionQuota, totalQuota int, onEvict EvictFunc) (*ResourcePool, error) {
	if sessionQuota <= 0 || totalQuota <= 0 {
		return nil, zerr.With(zerr.With(ErrInvalidQuota,
			"session", sessionQuota),
			"total", totalQuota)
	}
	if sessionQuota > totalQuota {
		return nil, zerr.Wrap(zerr.With(zerr.With(ErrInvalidQuota,
			"session", sessionQuota),
			"total", totalQuota), "session quota exceeds total quota")
	}
	return &ResourcePool{
		sessionQuota: sessionQuota,
		totalQuota:   totalQuota,
		grants:       make(map[string]ResourceGrant),
		onEvict:      onEvict,
		now:          time.Now,
	}, nil
}

// Acquire requests admission for path. Current-session requests beyond the
// session quota are rejected outright. When the pool is full a session
// request evicts the least recently used historical grant; a historical
// request is rejected instead.
func (p *ResourcePool) Acquire(path string, label SessionLabel) (ResourceGrant, error) {
	p.mu.Lock()
	grant, victim, err := p.admit(path, label)
	p.mu.Unlock()
	if err != nil {
		return ResourceGrant{}, err
	}
	if victim != nil && p.onEvict != nil {
		p.onEvict(*victim)
	}
	return grant, nil
}

func (p *ResourcePool) admit(path string, label SessionLabel) (ResourceGrant, *ResourceGrant, error) {
	if label == SessionCurrent && p.sessionCountLocked() >= p.sessionQuota {
		p.rejected++
		return ResourceGrant{}, nil, zerr.With(zerr.With(ErrPoolExhausted,
			"path", path),
			"reason", "session quota reached")
	}

	var victim *ResourceGrant
	if len(p.grants) >= p.totalQuota {
		if label != SessionCurrent {
			p.rejected++
			return ResourceGrant{}, nil, zerr.With(zerr.With(ErrPoolExhausted,
				"path", path),
				"reason", "pool full")
		}
		evicted, ok := p.evictHistoricalLocked()
		if !ok {
			p.rejected++
			return ResourceGrant{}, nil, zerr.With(zerr.With(ErrPoolExhausted,
				"path", path),
				"reason", "pool full of session grants")
		}
		victim = &evicted
	}

	grant := ResourceGrant{
		Handle:     uuid.NewString(),
		Path:       path,
		Label:      label,
		AdmittedAt: p.now(),
	}
	p.grants[grant.Handle] = grant
	p.recency = append(p.recency, grant.Handle)
	p.admitted++
	return grant, victim, nil
}

// evictHistoricalLocked removes the least recently used historical grant.
func (p *ResourcePool) evictHistoricalLocked() (ResourceGrant, bool) {
	for i, handle := range p.recency {
		grant := p.grants[handle]
		if grant.Label != SessionHistorical {
			continue
		}
		delete(p.grants, handle)
		p.recency = append(p.recency[:i], p.recency[i+1:]...)
		p.evicted++
		return grant, true
	}
	return ResourceGrant{}, false
}

// Touch marks a grant as recently used. It reports whether the handle is
// still live.
func (p *ResourcePool) Touch(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.grants[handle]; !ok {
		return false
	}
	for i, h := range p.recency {
		if h == handle {
			p.recency = append(p.recency[:i], p.recency[i+1:]...)
			break
		}
	}
	p.recency = append(p.recency, handle)
	return true
}

// Release returns a grant to the pool.
func (p *ResourcePool) Release(handle string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.grants[handle]; !ok {
		return zerr.With(ErrHandleNotFound, "handle", handle)
	}
	delete(p.grants, handle)
	for i, h := range p.recency {
		if h == handle {
			p.recency = append(p.recency[:i], p.recency[i+1:]...)
			break
		}
	}
	return nil
}

// MarkAllHistorical relabels every live grant as historical. The engine
// calls this on session reset so grants from the previous session become
// evictable.
func (p *ResourcePool) MarkAllHistorical() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for handle, grant := range p.grants {
		grant.Label = SessionHistorical
		p.grants[handle] = grant
	}
}

// Stats returns a snapshot of pool counters.
func (p *ResourcePool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Admitted: p.admitted,
		Rejected: p.rejected,
		Evicted:  p.evicted,
		InUse:    len(p.grants),
		Session:  p.sessionCountLocked(),
	}
}

func (p *ResourcePool) sessionCountLocked() int {
	n := 0
	for _, grant := range p.grants {
		if grant.Label == SessionCurrent {
			n++
		}
	}
	return n
}
