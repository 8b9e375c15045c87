// Package services provides application-level orchestration services
package services

import (
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/interfaces"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
)

// SessionStoreService keeps session truth consistent across the in-memory
// cache and the durable store. The cache is always written first; durable
// failures degrade to cache-only operation and are retried on later loads.
type SessionStoreService struct {
	cache       interfaces.SessionCache
	repo        session.Repository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionStoreService creates a new session store service
func NewSessionStoreService(
	cache interfaces.SessionCache,
	repo session.Repository,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *SessionStoreService {
	return &SessionStoreService{
		cache:       cache,
		repo:        repo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ReconcileReport describes what a reconcile pass did.
type ReconcileReport struct {
	AlreadyConsistent bool   `json:"alreadyConsistent"`
	CacheUpdated      bool   `json:"cacheUpdated"`
	DurableUpdated    bool   `json:"durableUpdated"`
	Detail            string `json:"detail,omitempty"`
}

// Load returns the most complete view of a session, creating a fresh active
// session when the id has never been seen. A cache entry that is flagged
// unsynchronized triggers a durable read so newer durable state (another
// process, or a restart) is not missed.
func (s *SessionStoreService) Load(sessionID string) *session.Session {
	marker := s.perfTracker.StartOperation("session_load", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	cached, inCache := s.cache.GetSession(sessionID)
	if inCache {
		marker.AddCacheHit()
		if cached.SynchronizedWithDB {
			marker.SetSuccess(true)
			return cached
		}
	} else {
		marker.AddCacheMiss()
	}

	durable, err := s.repo.FindByID(sessionID)
	if err != nil {
		// Durable tier down. Serve from cache if we can; otherwise start a
		// fresh unsynchronized session rather than failing the turn.
		s.logger.LogError(logging.ChannelDatabase, "session_load", err, sessionID)
		if inCache {
			marker.SetSuccess(true)
			return cached
		}
		fresh := session.New(sessionID)
		s.cache.SetSession(fresh)
		marker.SetSuccess(true)
		return fresh
	}

	merged := s.mergeViews(cached, durable, sessionID)
	s.cache.SetSession(merged)
	marker.SetSuccess(true)
	return merged
}

// mergeViews resolves the cache and durable views into the most complete one.
func (s *SessionStoreService) mergeViews(cached, durable *session.Session, sessionID string) *session.Session {
	switch {
	case cached == nil && durable == nil:
		return session.New(sessionID)

	case cached == nil:
		if durable.Status == session.StatusInactive {
			// Reusing a cancelled session id starts over; no inherited auth.
			return session.New(sessionID)
		}
		s.logger.Cache().Info("Session recovered from durable store",
			"sessionId", logging.MaskSessionID(sessionID),
			"authenticated", durable.Authenticated)
		return durable

	case durable == nil:
		// Cache-only session whose durable write has not landed yet; retry it.
		s.persistDurable(cached)
		return cached

	default:
		if durable.IsAuthenticated() && !cached.IsAuthenticated() {
			s.logger.Cache().Info("Authenticated state restored from durable store",
				"sessionId", logging.MaskSessionID(sessionID))
			return durable
		}
		if durable.IsChallengeIssued() && !cached.IsChallengeIssued() && !cached.IsAuthenticated() {
			cached.PendingIntent = durable.PendingIntent
			cached.PendingMessage = durable.PendingMessage
			cached.SynchronizedWithDB = true
			return cached
		}
		if !cached.SynchronizedWithDB {
			s.persistDurable(cached)
		}
		return cached
	}
}

// Save merges the update into the cache immediately, then attempts the
// durable upsert. A durable failure never fails the save; the session is
// flagged unsynchronized and retried later.
func (s *SessionStoreService) Save(sess *session.Session) {
	marker := s.perfTracker.StartOperation("session_save", sess.ID)
	defer s.perfTracker.CompleteOperation(marker)

	// Cache first: readers never wait on durable I/O. The second write
	// records the sync flag the upsert attempt produced.
	sess.LastAccessed = time.Now().UTC()
	s.cache.SetSession(sess)
	s.persistDurable(sess)
	s.cache.SetSession(sess)
	marker.SetSuccess(true)
}

// persistDurable attempts the durable upsert and sets the sync flag to match.
func (s *SessionStoreService) persistDurable(sess *session.Session) {
	if err := s.repo.Upsert(sess); err != nil {
		sess.SynchronizedWithDB = false
		s.logger.LogError(logging.ChannelDatabase, "session_upsert", err, sess.ID)
		return
	}
	sess.SynchronizedWithDB = true
}

// Reconcile compares the cache and durable views and resolves divergence.
// The authenticated side wins; when both sides are authenticated with
// different locked intents, the cache (the live actor) is pushed to the
// durable side. Running it twice with no intervening writes is a no-op.
func (s *SessionStoreService) Reconcile(sessionID string) *ReconcileReport {
	marker := s.perfTracker.StartOperation("session_reconcile", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	cached, inCache := s.cache.GetSession(sessionID)
	durable, err := s.repo.FindByID(sessionID)
	if err != nil {
		s.logger.LogError(logging.ChannelDatabase, "session_reconcile", err, sessionID)
		marker.SetError(err)
		return &ReconcileReport{Detail: "durable store unavailable"}
	}

	report := &ReconcileReport{}

	switch {
	case !inCache && durable == nil:
		report.AlreadyConsistent = true
		report.Detail = "no state on either tier"

	case !inCache && durable.Status == session.StatusInactive:
		// Cancelled session. Never resurrect it into the cache; the next
		// load starts a fresh session under the same id.
		report.AlreadyConsistent = true
		report.Detail = "inactive durable record left untouched"

	case !inCache:
		s.cache.SetSession(durable)
		report.CacheUpdated = true
		report.Detail = "cache restored from durable store"

	case durable == nil:
		s.persistDurable(cached)
		s.cache.SetSession(cached)
		report.DurableUpdated = cached.SynchronizedWithDB
		report.Detail = "durable record created from cache"

	case durable.IsAuthenticated() && !cached.IsAuthenticated():
		s.cache.SetSession(durable)
		report.CacheUpdated = true
		report.Detail = "authenticated durable state propagated to cache"

	case cached.IsAuthenticated() && !durable.IsAuthenticated():
		s.persistDurable(cached)
		s.cache.SetSession(cached)
		report.DurableUpdated = cached.SynchronizedWithDB
		report.Detail = "authenticated cache state propagated to durable store"

	case cached.IsAuthenticated() && durable.IsAuthenticated() && cached.LockedIntent != durable.LockedIntent:
		s.persistDurable(cached)
		s.cache.SetSession(cached)
		report.DurableUpdated = cached.SynchronizedWithDB
		report.Detail = "locked intent divergence resolved in cache's favor"

	case !cached.SynchronizedWithDB:
		s.persistDurable(cached)
		s.cache.SetSession(cached)
		report.DurableUpdated = cached.SynchronizedWithDB
		report.Detail = "pending durable write retried"

	default:
		report.AlreadyConsistent = true
		report.Detail = "already consistent"
	}

	marker.SetSuccess(true)
	return report
}

// Clear removes the cache entry and marks the durable record inactive. The
// durable row and its audit events are kept.
func (s *SessionStoreService) Clear(sessionID string) {
	marker := s.perfTracker.StartOperation("session_clear", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	s.cache.RemoveSession(sessionID)
	if err := s.repo.MarkInactive(sessionID); err != nil {
		s.logger.LogError(logging.ChannelDatabase, "session_clear", err, sessionID)
		marker.SetError(err)
		return
	}
	marker.SetSuccess(true)
}
