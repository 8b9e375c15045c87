package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
)

func newStoreService(t *testing.T, repo *fakeSessionRepo) (*SessionStoreService, *manager.Manager) {
	t.Helper()
	cache := manager.NewManager(nil)
	return NewSessionStoreService(cache, repo, newTestLogger(t), newTestTracker()), cache
}

func TestLoadCreatesFreshSessionForUnknownID(t *testing.T) {
	store, _ := newStoreService(t, newFakeSessionRepo())

	sess := store.Load("new-session")

	require.NotNil(t, sess)
	assert.Equal(t, "new-session", sess.ID)
	assert.Equal(t, session.StatusActive, sess.Status)
	assert.False(t, sess.Authenticated)
}

func TestLoadRecoversAuthenticatedStateFromDurable(t *testing.T) {
	repo := newFakeSessionRepo()
	authed := session.New("sess-1")
	authed.Authenticated = true
	authed.LockedIntent = "claim_status"
	authed.Profile = &session.Profile{UserType: "employee", DisplayName: "Jane"}
	authed.AuthState = &session.AuthState{UserType: "employee", Method: "credential_pair"}
	require.NoError(t, repo.Upsert(authed))

	// Empty cache simulates a process restart.
	store, cache := newStoreService(t, repo)

	sess := store.Load("sess-1")

	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "claim_status", sess.LockedIntent)
	assert.True(t, sess.SynchronizedWithDB)

	cached, ok := cache.GetSession("sess-1")
	require.True(t, ok)
	assert.True(t, cached.IsAuthenticated())
}

func TestLoadRestoresPendingChallengeFromDurable(t *testing.T) {
	repo := newFakeSessionRepo()
	pending := session.New("sess-1")
	pending.PendingIntent = "payment_status"
	pending.PendingMessage = "where is my payment"
	require.NoError(t, repo.Upsert(pending))

	store, _ := newStoreService(t, repo)

	sess := store.Load("sess-1")

	assert.True(t, sess.IsChallengeIssued())
	assert.Equal(t, "payment_status", sess.PendingIntent)
	assert.Equal(t, "where is my payment", sess.PendingMessage)
}

func TestLoadInactiveDurableStartsFresh(t *testing.T) {
	repo := newFakeSessionRepo()
	old := session.New("sess-1")
	old.Authenticated = true
	old.Profile = &session.Profile{UserType: "employee"}
	old.AuthState = &session.AuthState{}
	old.Status = session.StatusInactive
	require.NoError(t, repo.Upsert(old))

	store, _ := newStoreService(t, repo)

	sess := store.Load("sess-1")

	assert.False(t, sess.Authenticated, "a reused session id must not inherit prior authentication")
	assert.Equal(t, session.StatusActive, sess.Status)
	assert.Nil(t, sess.Profile)
}

func TestSaveAbsorbsDurableFailure(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	sess := store.Load("sess-1")
	repo.failing = true

	sess.PendingIntent = "claim_status"
	store.Save(sess)

	// The cache still sees the update; the sync flag records the debt.
	cached, ok := cache.GetSession("sess-1")
	require.True(t, ok)
	assert.Equal(t, "claim_status", cached.PendingIntent)
	assert.False(t, cached.SynchronizedWithDB)

	// Once the durable tier is back, the next save lands and clears the flag.
	repo.failing = false
	store.Save(cached)
	cached, _ = cache.GetSession("sess-1")
	assert.True(t, cached.SynchronizedWithDB)
}

func TestLoadRetriesDurableWriteForUnsynchronizedCache(t *testing.T) {
	repo := newFakeSessionRepo()
	store, _ := newStoreService(t, repo)

	sess := store.Load("sess-1")
	repo.failing = true
	sess.PendingIntent = "claim_status"
	store.Save(sess)

	repo.failing = false
	loaded := store.Load("sess-1")

	assert.True(t, loaded.SynchronizedWithDB)
	stored, err := repo.FindByID("sess-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "claim_status", stored.PendingIntent)
}

func TestReconcileIsIdempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	store, _ := newStoreService(t, repo)

	sess := store.Load("sess-1")
	sess.PendingIntent = "claim_status"
	store.Save(sess)

	first := store.Reconcile("sess-1")
	second := store.Reconcile("sess-1")

	assert.True(t, second.AlreadyConsistent, "second reconcile must report no changes, got %q", second.Detail)
	assert.False(t, second.CacheUpdated)
	assert.False(t, second.DurableUpdated)
	_ = first
}

func TestReconcileAuthenticatedSideWins(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	// Durable authenticated, cache not: durable propagates to cache.
	authed := session.New("sess-1")
	authed.Authenticated = true
	authed.Profile = &session.Profile{UserType: "employee"}
	authed.AuthState = &session.AuthState{}
	require.NoError(t, repo.Upsert(authed))

	stale := session.New("sess-1")
	stale.SynchronizedWithDB = true
	cache.SetSession(stale)

	report := store.Reconcile("sess-1")

	assert.True(t, report.CacheUpdated)
	cached, _ := cache.GetSession("sess-1")
	assert.True(t, cached.IsAuthenticated())
}

func TestReconcileLockedIntentDivergenceFavorsCache(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	durable := session.New("sess-1")
	durable.Authenticated = true
	durable.LockedIntent = "claim_status"
	durable.Profile = &session.Profile{UserType: "employee"}
	durable.AuthState = &session.AuthState{}
	require.NoError(t, repo.Upsert(durable))

	fresher := durable.Clone()
	fresher.LockedIntent = "payment_status"
	fresher.SynchronizedWithDB = true
	cache.SetSession(fresher)

	report := store.Reconcile("sess-1")

	assert.True(t, report.DurableUpdated)
	stored, err := repo.FindByID("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "payment_status", stored.LockedIntent)
}

func TestReconcileLeavesInactiveDurableAlone(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	// Cancelled session: cache cleared, durable row inactive.
	sess := store.Load("sess-1")
	sess.PendingIntent = "claim_status"
	store.Save(sess)
	store.Clear("sess-1")

	report := store.Reconcile("sess-1")

	assert.True(t, report.AlreadyConsistent)
	assert.False(t, report.CacheUpdated, "a cancelled session must not be resurrected into the cache")
	_, ok := cache.GetSession("sess-1")
	assert.False(t, ok)

	// The next load still starts a fresh active session.
	fresh := store.Load("sess-1")
	assert.Equal(t, session.StatusActive, fresh.Status)
	assert.False(t, fresh.IsChallengeIssued())
}

func TestSaveWritesCacheBeforeDurable(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	sess := store.Load("sess-1")
	sess.PendingIntent = "claim_status"

	// Readers (ops broadcaster, cleanup) must see the update while the
	// durable write is still in flight.
	seen := ""
	repo.onUpsert = func() {
		if cached, ok := cache.GetSession("sess-1"); ok {
			seen = cached.PendingIntent
		}
	}
	store.Save(sess)

	assert.Equal(t, "claim_status", seen)
	assert.True(t, sess.SynchronizedWithDB)
}

func TestClearRemovesCacheAndMarksInactive(t *testing.T) {
	repo := newFakeSessionRepo()
	store, cache := newStoreService(t, repo)

	sess := store.Load("sess-1")
	sess.PendingIntent = "claim_status"
	store.Save(sess)

	store.Clear("sess-1")

	_, ok := cache.GetSession("sess-1")
	assert.False(t, ok)

	repo.mu.Lock()
	stored := repo.sessions["sess-1"]
	repo.mu.Unlock()
	require.NotNil(t, stored)
	assert.Equal(t, session.StatusInactive, stored.Status)
}
