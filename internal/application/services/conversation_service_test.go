package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixdesk/helixdesk-go/internal/domain/intent"
	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
)

type conversationFixture struct {
	service  *ConversationService
	store    *SessionStoreService
	cache    *manager.Manager
	repo     *fakeSessionRepo
	verifier *fakeVerifier
	liveData *fakeLiveData
	events   *fakeAuthEvents
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	logger := newTestLogger(t)
	tracker := newTestTracker()

	repo := newFakeSessionRepo()
	cache := manager.NewManager(nil)
	store := NewSessionStoreService(cache, repo, logger, tracker)

	v := &fakeVerifier{result: verifiedProfile()}
	events := &fakeAuthEvents{}
	escalation := NewEscalationService(nil, logger)
	gate := NewAuthGateService(v, events, escalation, logger, tracker)

	liveData := &fakeLiveData{reply: "Your claim is being processed."}
	intents := NewIntentService(logger, tracker)

	return &conversationFixture{
		service:  NewConversationService(store, gate, intents, liveData, cache, logger, tracker),
		store:    store,
		cache:    cache,
		repo:     repo,
		verifier: v,
		liveData: liveData,
		events:   events,
	}
}

func TestProtectedIntentAlwaysChallenged(t *testing.T) {
	f := newConversationFixture(t)

	result := f.service.ProcessUserRequest(context.Background(), "I need my claim status", "sess-1")

	assert.Contains(t, result.Reply, "claim status")
	assert.Contains(t, result.Reply, "verify")
	assert.False(t, result.Authenticated)
	assert.False(t, result.LiveDataUsed)
	assert.Equal(t, string(intent.ClaimStatus), result.Intent)

	sess := f.store.Load("sess-1")
	assert.True(t, sess.IsChallengeIssued())
	assert.Equal(t, string(intent.ClaimStatus), sess.PendingIntent)
	assert.Empty(t, f.liveData.calls, "an unauthenticated session must never reach live data")
}

func TestOpenIntentsNeverChallenged(t *testing.T) {
	f := newConversationFixture(t)

	for _, msg := range []string{"hello", "what are your office hours", "random chatter"} {
		result := f.service.ProcessUserRequest(context.Background(), msg, "sess-open")
		assert.False(t, result.Authenticated)
		assert.NotContains(t, result.Reply, "verify your identity", "message %q must not trigger the gate", msg)
	}

	sess := f.store.Load("sess-open")
	assert.False(t, sess.IsChallengeIssued())
}

func TestFullAuthenticationFlow(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	// Turn 1: protected intent, challenge issued.
	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")

	// Turn 2: credentials. The verifier must see the exact pair and intent.
	result := f.service.ProcessUserRequest(ctx, "228597/62/1 PEN_0005000168", "sess-1")

	require.Len(t, f.verifier.calls, 1)
	assert.Equal(t, "228597/62/1", f.verifier.calls[0].NationalID)
	assert.Equal(t, "PEN-0005000168", f.verifier.calls[0].ReferenceNumber)
	assert.Equal(t, string(intent.ClaimStatus), f.verifier.calls[0].Intent)

	assert.True(t, result.Authenticated)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.LiveDataUsed)
	// The original message is replayed for the first personalized answer.
	require.Len(t, f.liveData.calls, 1)
	assert.Equal(t, "I need my claim status", f.liveData.calls[0].Message)

	sess := f.store.Load("sess-1")
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, string(intent.ClaimStatus), sess.LockedIntent)
}

func TestAuthenticatedTurnsUseLiveData(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")

	result := f.service.ProcessUserRequest(ctx, "has anything changed since yesterday", "sess-1")

	assert.True(t, result.Authenticated)
	assert.True(t, result.LiveDataUsed)
	assert.Equal(t, "Your claim is being processed.", result.Reply)
	assert.Equal(t, string(intent.ClaimStatus), result.Intent)
}

func TestCancellationStartsFresh(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "cancel", "sess-1")

	// The durable record is kept for audit, marked inactive.
	f.repo.mu.Lock()
	stored := f.repo.sessions["sess-1"]
	f.repo.mu.Unlock()
	require.NotNil(t, stored)
	assert.Equal(t, session.StatusInactive, stored.Status)

	// The next message on the same id starts fully unauthenticated.
	result := f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	assert.False(t, result.Authenticated)
	assert.Contains(t, result.Reply, "verify")

	sess := f.store.Load("sess-1")
	assert.True(t, sess.IsChallengeIssued())
	assert.False(t, sess.Authenticated)
}

func TestCancellationThenReconcileStillStartsFresh(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "cancel", "sess-1")

	// A reconcile pass between turns must not revive the cancelled session.
	report := f.store.Reconcile("sess-1")
	assert.True(t, report.AlreadyConsistent)

	result := f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	assert.Contains(t, result.Reply, "verify")

	// The credential turn reaches the gate, not the classifier.
	result = f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")
	assert.True(t, result.Authenticated)
	require.Len(t, f.verifier.calls, 1)
}

func TestReAuthenticationKeepsLockedIntent(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")

	before := f.store.Load("sess-1").LockedIntent

	// Explicit auth input on an already-authenticated session is a no-op.
	result := f.service.ProcessAuthenticationInput(ctx, "228597/62/1 PEN-0005000168", "sess-1")
	assert.NotEmpty(t, result.Error)

	assert.Equal(t, before, f.store.Load("sess-1").LockedIntent)
	assert.Len(t, f.verifier.calls, 1, "no second verifier call for an authenticated session")
}

func TestIntentChangeRelocksWithoutReVerification(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")

	result := f.service.ProcessUserRequest(ctx, "actually I want my payment status instead", "sess-1")

	assert.True(t, result.Authenticated)
	assert.Equal(t, string(intent.PaymentStatus), result.Intent)
	assert.Len(t, f.verifier.calls, 1, "re-locking must not re-collect credentials")

	sess := f.store.Load("sess-1")
	assert.Equal(t, string(intent.PaymentStatus), sess.LockedIntent)
	assert.True(t, sess.IsAuthenticated())
}

func TestIntentChangeToOpenIntentDropsAuthLinkage(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")

	result := f.service.ProcessUserRequest(ctx, "something else - what are your office hours", "sess-1")

	assert.False(t, result.Authenticated)
	assert.Equal(t, string(intent.OfficeInfo), result.Intent)

	sess := f.store.Load("sess-1")
	assert.False(t, sess.Authenticated)
	assert.Empty(t, sess.LockedIntent)
	assert.Nil(t, sess.Profile)
}

func TestLiveDataFailureDegradesGracefully(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")
	f.service.ProcessUserRequest(ctx, "228597/62/1 PEN-0005000168", "sess-1")

	f.liveData.err = errors.New("responder down")
	result := f.service.ProcessUserRequest(ctx, "any update", "sess-1")

	assert.True(t, result.Authenticated, "a responder outage must not disturb authentication state")
	assert.False(t, result.LiveDataUsed)
	assert.NotEmpty(t, result.Reply)

	sess := f.store.Load("sess-1")
	assert.True(t, sess.IsAuthenticated())
}

func TestChatEntryRoutesChallengeTurns(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	f.service.ProcessUserRequest(ctx, "I need my claim status", "sess-1")

	// A help command sent to the main entry point still lands in the
	// credential dialogue.
	result := f.service.ProcessUserRequest(ctx, "help", "sess-1")
	assert.Contains(t, result.Reply, "national ID")
	assert.False(t, result.Authenticated)
}
