// Package manager provides centralized cache operations by delegating to
// specialized stores.
package manager

import (
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/interfaces"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/stores"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
)

// Interface assertions to ensure Manager implements all required interfaces.
var (
	_ interfaces.SessionCache  = (*Manager)(nil)
	_ interfaces.SessionLocker = (*Manager)(nil)
)

// Manager provides centralized cache operations. Today the only store is the
// sessions store; the delegation layer keeps the call sites stable if more
// stores are added.
type Manager struct {
	sessionsStore *stores.SessionsStore
	logger        *logging.ChanneledLogger
}

func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"sessions"})
	}

	return &Manager{
		sessionsStore: stores.NewSessionsStore(logger),
		logger:        logger,
	}
}

func (m *Manager) GetSession(sessionID string) (*session.Session, bool) {
	return m.sessionsStore.GetSession(sessionID)
}

func (m *Manager) SetSession(sess *session.Session) {
	m.sessionsStore.SetSession(sess)
}

func (m *Manager) RemoveSession(sessionID string) {
	m.sessionsStore.RemoveSession(sessionID)
}

func (m *Manager) GetAllSessionIDs() []string {
	return m.sessionsStore.GetAllSessionIDs()
}

func (m *Manager) GetLastAccessed(sessionID string) (time.Time, bool) {
	return m.sessionsStore.GetLastAccessed(sessionID)
}

func (m *Manager) LockSession(sessionID string) func() {
	return m.sessionsStore.LockSession(sessionID)
}

func (m *Manager) EvictIdleSessions(idleFor time.Duration) int {
	return m.sessionsStore.EvictIdleSessions(idleFor)
}

func (m *Manager) SessionCount() int {
	return m.sessionsStore.Len()
}
