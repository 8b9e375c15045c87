// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
)

// SessionsStore implements in-memory session state caching with per-session
// keyed locks for read-modify-write serialization.
type SessionsStore struct {
	sessions     map[string]*session.Session
	lastAccessed map[string]time.Time
	mu           sync.RWMutex

	locks  map[string]*sessionLock
	lockMu sync.Mutex

	logger *logging.ChanneledLogger
}

// sessionLock reference-counts waiters so idle locks can be evicted without
// racing a concurrent LockSession call.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store")
	}
	return &SessionsStore{
		sessions:     make(map[string]*session.Session),
		lastAccessed: make(map[string]time.Time),
		locks:        make(map[string]*sessionLock),
		logger:       logger,
	}
}

// GetSession returns a deep copy of the cached session, if present.
func (ss *SessionsStore) GetSession(sessionID string) (*session.Session, bool) {
	start := time.Now()
	ss.mu.RLock()
	sess, exists := ss.sessions[sessionID]
	ss.mu.RUnlock()

	if !exists {
		if ss.logger != nil {
			ss.logger.LogCacheOperation("get_session", sessionID, false, time.Since(start))
		}
		return nil, false
	}

	ss.mu.Lock()
	ss.lastAccessed[sessionID] = time.Now().UTC()
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.LogCacheOperation("get_session", sessionID, true, time.Since(start))
	}
	return sess.Clone(), true
}

// SetSession stores a deep copy of the session.
func (ss *SessionsStore) SetSession(sess *session.Session) {
	if sess == nil {
		return
	}

	ss.mu.Lock()
	ss.sessions[sess.ID] = sess.Clone()
	ss.lastAccessed[sess.ID] = time.Now().UTC()
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Session cached",
			"sessionId", logging.MaskSessionID(sess.ID),
			"authenticated", sess.Authenticated,
			"synchronized", sess.SynchronizedWithDB)
	}
}

// RemoveSession evicts a session from the cache.
func (ss *SessionsStore) RemoveSession(sessionID string) {
	ss.mu.Lock()
	delete(ss.sessions, sessionID)
	delete(ss.lastAccessed, sessionID)
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Session evicted", "sessionId", logging.MaskSessionID(sessionID))
	}
}

// GetAllSessionIDs returns all cached session ids.
func (ss *SessionsStore) GetAllSessionIDs() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	ids := make([]string, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	return ids
}

// GetLastAccessed returns when a cached session was last touched.
func (ss *SessionsStore) GetLastAccessed(sessionID string) (time.Time, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	t, ok := ss.lastAccessed[sessionID]
	return t, ok
}

// LockSession blocks until the caller holds the per-session lock, then
// returns the release function. Locks are created on demand and
// reference-counted so eviction never strands a waiter.
func (ss *SessionsStore) LockSession(sessionID string) func() {
	ss.lockMu.Lock()
	sl, exists := ss.locks[sessionID]
	if !exists {
		sl = &sessionLock{}
		ss.locks[sessionID] = sl
	}
	sl.refs++
	ss.lockMu.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		ss.lockMu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(ss.locks, sessionID)
		}
		ss.lockMu.Unlock()
	}
}

// EvictIdleSessions removes synchronized sessions untouched for longer than
// idleFor. Unsynchronized entries are kept: the cache is their only copy
// until the durable tier catches up.
func (ss *SessionsStore) EvictIdleSessions(idleFor time.Duration) int {
	cutoff := time.Now().UTC().Add(-idleFor)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	evicted := 0
	for id, sess := range ss.sessions {
		last, ok := ss.lastAccessed[id]
		if !ok || last.After(cutoff) {
			continue
		}
		if !sess.SynchronizedWithDB {
			continue
		}
		delete(ss.sessions, id)
		delete(ss.lastAccessed, id)
		evicted++
	}

	if evicted > 0 && ss.logger != nil {
		ss.logger.Cache().Info("Idle sessions evicted", "count", evicted)
	}
	return evicted
}

// Len returns the number of cached sessions.
func (ss *SessionsStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
