// Package interfaces defines the cache operation contracts for the fast
// in-memory session tier.
package interfaces

import (
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
)

// SessionCache defines operations for the in-memory session tier. Values are
// deep-copied on the way in and out; read-modify-write sequences must hold
// the per-session lock from SessionLocker.
type SessionCache interface {
	GetSession(sessionID string) (*session.Session, bool)
	SetSession(sess *session.Session)
	RemoveSession(sessionID string)
	GetAllSessionIDs() []string
	GetLastAccessed(sessionID string) (time.Time, bool)
}

// SessionLocker serializes load-decide-save sequences per session id.
// Requests for different sessions proceed fully in parallel.
type SessionLocker interface {
	// LockSession blocks until the per-session lock is held and returns the
	// release function.
	LockSession(sessionID string) (unlock func())
}
