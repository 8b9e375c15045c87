// Package messaging provides real-time operational broadcasting over websockets.
package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
)

// OpsClient represents a single connected operations dashboard client.
type OpsClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// SessionState represents the state of a single conversation session for visualization.
type SessionState struct {
	Authenticated   bool      `json:"authenticated"`
	ChallengeIssued bool      `json:"challengeIssued"`
	LastActivity    time.Time `json:"lastActivity"`
}

// SessionStatePayload is the complete data structure sent to the dashboard on each tick.
type SessionStatePayload struct {
	SessionStates      []SessionState `json:"sessionStates"`
	TotalCount         int            `json:"totalCount"`
	AuthenticatedCount int            `json:"authenticatedCount"`
	ChallengedCount    int            `json:"challengedCount"`
	ActiveCount        int            `json:"activeCount"`
	DormantCount       int            `json:"dormantCount"`
}

// OpsBroadcaster manages all connected operations clients and broadcasts
// session state snapshots sampled from the cache tier.
type OpsBroadcaster struct {
	clients      map[*OpsClient]bool
	register     chan *OpsClient
	unregister   chan *OpsClient
	cacheManager *manager.Manager
	mu           sync.RWMutex
}

// NewOpsBroadcaster creates a new broadcaster instance.
func NewOpsBroadcaster(cm *manager.Manager) *OpsBroadcaster {
	return &OpsBroadcaster{
		clients:      make(map[*OpsClient]bool),
		register:     make(chan *OpsClient),
		unregister:   make(chan *OpsClient),
		cacheManager: cm,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *OpsBroadcaster) Run() {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			log.Printf("Ops client registered (%d connected)", len(b.clients))
			b.mu.Unlock()

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			log.Printf("Ops client unregistered (%d connected)", len(b.clients))
			b.mu.Unlock()

		case <-ticker.C:
			b.broadcastSessionMap()
		}
	}
}

// Register queues a client for registration.
func (b *OpsBroadcaster) Register(client *OpsClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *OpsBroadcaster) Unregister(client *OpsClient) {
	b.unregister <- client
}

// broadcastSessionMap gathers the session state snapshot and sends it to all clients.
func (b *OpsBroadcaster) broadcastSessionMap() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	payload := b.buildPayload(b.collectSessionStates())

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling session state payload: %v", err)
		return
	}

	b.mu.RLock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
	b.mu.RUnlock()
}

// collectSessionStates samples the cache tier for every live session.
func (b *OpsBroadcaster) collectSessionStates() []SessionState {
	ids := b.cacheManager.GetAllSessionIDs()
	states := make([]SessionState, 0, len(ids))

	for _, id := range ids {
		sess, ok := b.cacheManager.GetSession(id)
		if !ok {
			continue
		}
		lastActivity := sess.LastAccessed
		if t, ok := b.cacheManager.GetLastAccessed(id); ok {
			lastActivity = t
		}
		states = append(states, SessionState{
			Authenticated:   sess.IsAuthenticated(),
			ChallengeIssued: sess.IsChallengeIssued(),
			LastActivity:    lastActivity,
		})
	}
	return states
}

// buildPayload calculates aggregate statistics from the full session list.
func (b *OpsBroadcaster) buildPayload(states []SessionState) SessionStatePayload {
	payload := SessionStatePayload{
		SessionStates: states,
		TotalCount:    len(states),
	}

	now := time.Now()
	for _, s := range states {
		if s.Authenticated {
			payload.AuthenticatedCount++
		}
		if s.ChallengeIssued {
			payload.ChallengedCount++
		}
		if now.Sub(s.LastActivity).Minutes() <= 45 {
			payload.ActiveCount++
		} else {
			payload.DormantCount++
		}
	}
	return payload
}
