// Package session defines the conversation session entity and the interfaces
// for persisting it. The durable repository abstracts the storage details,
// ensuring the core application is clean and decoupled from the database.
// Note: the fast in-memory tier is handled by the cache layer, not persistence.
package session

import "time"

// Status represents the lifecycle state of a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Profile represents a verified identity record returned by the Identity
// Verifier. UserType is the required discriminant; verifier-specific fields
// land in Extra so gate logic never depends on unvalidated keys.
type Profile struct {
	UserType    string            `json:"userType"`
	DisplayName string            `json:"displayName"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// AuthState captures how and when a session was authenticated.
// It is set only on successful verification.
type AuthState struct {
	NationalID      string    `json:"-"` // Never serialize; AES-encrypted at rest
	AuthenticatedAt time.Time `json:"authenticatedAt"`
	UserType        string    `json:"userType"`
	Method          string    `json:"method"`
}

// Session represents one conversation thread, keyed by an opaque session id.
type Session struct {
	ID                 string     `json:"sessionId"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastAccessed       time.Time  `json:"lastAccessed"`
	Authenticated      bool       `json:"authenticated"`
	LockedIntent       string     `json:"lockedIntent,omitempty"`
	PendingIntent      string     `json:"pendingIntent,omitempty"`
	PendingMessage     string     `json:"pendingMessage,omitempty"`
	Profile            *Profile   `json:"profile,omitempty"`
	AuthState          *AuthState `json:"authState,omitempty"`
	FailedAttempts     int        `json:"failedAttempts"`
	SynchronizedWithDB bool       `json:"synchronizedWithDb"`
	Status             Status     `json:"status"`
}

// New creates a fresh, unauthenticated session for the given id.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastAccessed: now,
		Status:       StatusActive,
	}
}

// IsAuthenticated reports whether the session holds verified identity state.
// An inactive session is never treated as authenticated, whatever its fields say.
func (s *Session) IsAuthenticated() bool {
	return s.Status == StatusActive && s.Authenticated && s.Profile != nil && s.AuthState != nil
}

// IsChallengeIssued reports whether an authentication challenge is outstanding.
func (s *Session) IsChallengeIssued() bool {
	return s.Status == StatusActive && !s.Authenticated && s.PendingIntent != ""
}

// Clone returns a deep copy so cache readers never share mutable state.
func (s *Session) Clone() *Session {
	dup := *s
	if s.Profile != nil {
		p := *s.Profile
		if s.Profile.Extra != nil {
			p.Extra = make(map[string]string, len(s.Profile.Extra))
			for k, v := range s.Profile.Extra {
				p.Extra[k] = v
			}
		}
		dup.Profile = &p
	}
	if s.AuthState != nil {
		a := *s.AuthState
		dup.AuthState = &a
	}
	return &dup
}

// AuthEvent is one row of the authentication audit trail. Events are retained
// even after a session goes inactive.
type AuthEvent struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Intent         string    `json:"intent"`
	Outcome        string    `json:"outcome"` // "verified", "rejected", "unavailable"
	CredentialHash string    `json:"-"`       // bcrypt of the submitted pair, never raw PII
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository defines the operations for the durable session tier.
// Every write is an upsert keyed by session id.
type Repository interface {
	FindByID(id string) (*Session, error)
	Upsert(sess *Session) error
	MarkInactive(id string) error
}

// AuthEventRepository defines the operations for the authentication audit trail.
type AuthEventRepository interface {
	Record(event *AuthEvent) error
	FindBySessionID(sessionID string) ([]*AuthEvent, error)
}
