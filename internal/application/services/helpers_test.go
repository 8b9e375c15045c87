package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/livedata"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/verifier"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	return logger
}

func newTestTracker() *performance.Tracker {
	return performance.NewTracker(performance.DefaultTrackerConfig())
}

// fakeSessionRepo is an in-memory durable tier with switchable failure.
// onUpsert, when set, runs during each durable write so tests can observe
// the state of the world mid-save.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	failing  bool
	upserts  int
	onUpsert func()
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*session.Session)}
}

func (r *fakeSessionRepo) FindByID(id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errors.New("durable store down")
	}
	sess, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	dup := sess.Clone()
	dup.SynchronizedWithDB = true
	return dup, nil
}

func (r *fakeSessionRepo) Upsert(sess *session.Session) error {
	if r.onUpsert != nil {
		r.onUpsert()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("durable store down")
	}
	r.upserts++
	r.sessions[sess.ID] = sess.Clone()
	return nil
}

func (r *fakeSessionRepo) MarkInactive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("durable store down")
	}
	if sess, ok := r.sessions[id]; ok {
		sess.Status = session.StatusInactive
	}
	return nil
}

// fakeAuthEvents collects audit rows in memory.
type fakeAuthEvents struct {
	mu     sync.Mutex
	events []*session.AuthEvent
}

func (r *fakeAuthEvents) Record(event *session.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuthEvents) FindBySessionID(sessionID string) ([]*session.AuthEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*session.AuthEvent
	for _, e := range r.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuthEvents) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Outcome)
	}
	return out
}

// fakeVerifier returns a scripted result and records the calls it saw.
type fakeVerifier struct {
	result *verifier.Result
	err    error

	mu    sync.Mutex
	calls []verifierCall
}

type verifierCall struct {
	NationalID      string
	ReferenceNumber string
	Intent          string
}

func (v *fakeVerifier) Verify(_ context.Context, nationalID, referenceNumber, intent string) (*verifier.Result, error) {
	v.mu.Lock()
	v.calls = append(v.calls, verifierCall{nationalID, referenceNumber, intent})
	v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.result, nil
}

func verifiedProfile() *verifier.Result {
	return &verifier.Result{
		Success: true,
		Profile: &session.Profile{UserType: "employee", DisplayName: "Jane"},
	}
}

// fakeLiveData answers every authenticated request with a fixed reply.
type fakeLiveData struct {
	reply string
	err   error

	mu    sync.Mutex
	calls []liveDataCall
}

type liveDataCall struct {
	Intent  string
	Message string
}

func (l *fakeLiveData) Respond(_ context.Context, intent string, _ *session.Profile, message string) (*livedata.Response, error) {
	l.mu.Lock()
	l.calls = append(l.calls, liveDataCall{intent, message})
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return &livedata.Response{Reply: l.reply, DataSources: []string{"claims"}}, nil
}
