package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionIsActiveAndUnauthenticated(t *testing.T) {
	sess := New("sess-1")

	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, StatusActive, sess.Status)
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.IsChallengeIssued())
	assert.False(t, sess.SynchronizedWithDB)
}

func TestIsAuthenticatedRequiresProfileAndAuthState(t *testing.T) {
	sess := New("sess-1")
	sess.Authenticated = true

	// The flag alone is not enough.
	assert.False(t, sess.IsAuthenticated())

	sess.Profile = &Profile{UserType: "employee", DisplayName: "Jane"}
	sess.AuthState = &AuthState{AuthenticatedAt: time.Now().UTC(), UserType: "employee", Method: "credential_pair"}
	assert.True(t, sess.IsAuthenticated())
}

func TestInactiveSessionNeverAuthenticated(t *testing.T) {
	sess := New("sess-1")
	sess.Authenticated = true
	sess.Profile = &Profile{UserType: "employee"}
	sess.AuthState = &AuthState{}
	sess.Status = StatusInactive

	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.IsChallengeIssued())
}

func TestIsChallengeIssued(t *testing.T) {
	sess := New("sess-1")
	assert.False(t, sess.IsChallengeIssued())

	sess.PendingIntent = "claim_status"
	assert.True(t, sess.IsChallengeIssued())

	sess.Authenticated = true
	assert.False(t, sess.IsChallengeIssued())
}

func TestCloneIsDeep(t *testing.T) {
	sess := New("sess-1")
	sess.Profile = &Profile{
		UserType:    "employee",
		DisplayName: "Jane",
		Extra:       map[string]string{"branch": "north"},
	}
	sess.AuthState = &AuthState{NationalID: "123456/78/9"}

	dup := sess.Clone()
	require.NotSame(t, sess, dup)

	dup.Profile.Extra["branch"] = "south"
	dup.AuthState.NationalID = "changed"
	dup.PendingIntent = "payment_status"

	assert.Equal(t, "north", sess.Profile.Extra["branch"])
	assert.Equal(t, "123456/78/9", sess.AuthState.NationalID)
	assert.Empty(t, sess.PendingIntent)
}
