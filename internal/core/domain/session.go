package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Session draws the line between current work and historical files.
// Assets modified after the session start belong to the current session;
// everything older is historical.
type Session struct {
	startedAt time.Time
}

// NewSession starts a session at the given instant.
func NewSession(startedAt time.Time) *Session {
	return &Session{startedAt: startedAt}
}

// StartedAt returns the session boundary.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Contains reports whether an asset modified at t belongs to the current
// session. The boundary itself is historical.
func (s *Session) Contains(t time.Time) bool {
	return t.After(s.startedAt)
}

// Classify returns the session label for an asset modified at t.
func (s *Session) Classify(t time.Time) SessionLabel {
	if s.Contains(t) {
		return SessionCurrent
	}
	return SessionHistorical
}

// Reset moves the session boundary forward. The boundary is monotonic:
// a reset to the current boundary or earlier fails with
// ErrSessionResetOutOfOrder and leaves the session unchanged.
func (s *Session) Reset(startedAt time.Time) error {
	if !startedAt.After(s.startedAt) {
		return zerr.With(zerr.With(ErrSessionResetOutOfOrder,
			"current", s.startedAt.Format(time.RFC3339Nano)),
			"requested", startedAt.Format(time.RFC3339Nano))
	}
	s.startedAt = startedAt
	return nil
}

// SessionLabel is the classification of an asset relative to the session
// boundary.
type SessionLabel string

const (
	// SessionCurrent marks an asset modified after the session started.
	SessionCurrent SessionLabel = "current"
	// SessionHistorical marks an asset modified at or before the session start.
	SessionHistorical SessionLabel = "historical"
)
