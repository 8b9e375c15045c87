package services

import (
	"context"

	"github.com/helixdesk/helixdesk-go/internal/domain/intent"
	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/interfaces"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/livedata"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
)

// ConversationService is the top-level entry point for inbound messages. It
// serializes every load-decide-save sequence behind the per-session lock and
// sequences the classifier, the gate, and the live data responder.
type ConversationService struct {
	store       *SessionStoreService
	gate        *AuthGateService
	intents     *IntentService
	liveData    livedata.Service
	locker      interfaces.SessionLocker
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewConversationService creates a new conversation service
func NewConversationService(
	store *SessionStoreService,
	gate *AuthGateService,
	intents *IntentService,
	liveData livedata.Service,
	locker interfaces.SessionLocker,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ConversationService {
	return &ConversationService{
		store:       store,
		gate:        gate,
		intents:     intents,
		liveData:    liveData,
		locker:      locker,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ConversationResult is the reply plus machine-readable metadata for one turn.
type ConversationResult struct {
	Reply         string `json:"reply"`
	Authenticated bool   `json:"authenticated"`
	Intent        string `json:"intent"`
	SessionID     string `json:"sessionId"`
	LiveDataUsed  bool   `json:"liveDataUsed"`
	Token         string `json:"token,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ProcessUserRequest handles a regular conversation turn. A session in the
// middle of an authentication challenge is routed into the credential
// dialogue so callers only ever need one entry point.
func (s *ConversationService) ProcessUserRequest(ctx context.Context, message, sessionID string) *ConversationResult {
	unlock := s.locker.LockSession(sessionID)
	defer unlock()

	marker := s.perfTracker.StartOperationWithContext(ctx, "process_user_request", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	sess := s.store.Load(sessionID)

	if sess.IsChallengeIssued() {
		result := s.handleAuthTurn(ctx, sess, message)
		marker.SetSuccess(true)
		return result
	}

	it, confidence := s.intents.Classify(message, sessionID)
	marker.AddMetadata("intent", string(it))
	marker.AddMetadata("confidence", confidence)

	var result *ConversationResult
	switch {
	case sess.IsAuthenticated():
		result = s.handleAuthenticatedTurn(ctx, sess, it, message)
	case intent.RequiresAuthentication(it):
		reply := s.gate.IssueChallenge(sess, it, message)
		s.store.Save(sess)
		result = &ConversationResult{
			Reply:     reply,
			Intent:    string(it),
			SessionID: sessionID,
		}
	default:
		result = &ConversationResult{
			Reply:     s.generalReply(it),
			Intent:    string(it),
			SessionID: sessionID,
		}
		s.store.Save(sess)
	}

	marker.SetSuccess(true)
	return result
}

// AuthInputResult is the outcome of one credential dialogue turn.
type AuthInputResult struct {
	Reply         string `json:"reply"`
	Authenticated bool   `json:"authenticated"`
	SessionID     string `json:"sessionId"`
	Token         string `json:"token,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ProcessAuthenticationInput handles a turn while a challenge is outstanding.
func (s *ConversationService) ProcessAuthenticationInput(ctx context.Context, message, sessionID string) *AuthInputResult {
	unlock := s.locker.LockSession(sessionID)
	defer unlock()

	marker := s.perfTracker.StartOperationWithContext(ctx, "process_authentication_input", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	sess := s.store.Load(sessionID)
	result := s.handleAuthTurn(ctx, sess, message)

	marker.SetSuccess(true)
	return &AuthInputResult{
		Reply:         result.Reply,
		Authenticated: result.Authenticated,
		SessionID:     sessionID,
		Token:         result.Token,
		Error:         result.Error,
	}
}

// handleAuthTurn drives transitions 3-6 and persists the resulting state.
// Callers must hold the session lock.
func (s *ConversationService) handleAuthTurn(ctx context.Context, sess *session.Session, message string) *ConversationResult {
	outcome := s.gate.HandleAuthInput(ctx, sess, message)

	result := &ConversationResult{
		Reply:         outcome.Reply,
		Authenticated: outcome.Authenticated,
		Intent:        sess.LockedIntent,
		SessionID:     sess.ID,
		Token:         outcome.Token,
	}
	if outcome.Err != nil {
		result.Error = outcome.Err.Error()
		result.Intent = sess.PendingIntent
	}

	switch {
	case outcome.Terminated:
		s.store.Clear(sess.ID)

	case outcome.Authenticated:
		s.store.Save(sess)
		// Replay the message that triggered the challenge so the user gets
		// an immediate personalized answer with the welcome text.
		replay := outcome.ReplayMessage
		if replay == "" {
			replay = message
		}
		if reply, ok := s.respondWithLiveData(ctx, sess, replay); ok {
			result.Reply = outcome.Reply + " " + reply
			result.LiveDataUsed = true
		}

	case outcome.Err == ErrNoPendingAuthentication:
		// Session untouched.

	default:
		s.store.Save(sess)
	}

	return result
}

// handleAuthenticatedTurn drives transitions 7-8.
func (s *ConversationService) handleAuthenticatedTurn(ctx context.Context, sess *session.Session, it intent.Intent, message string) *ConversationResult {
	if intent.IsIntentChangeRequest(message) {
		return s.handleIntentChange(ctx, sess, it, message)
	}

	// Continue answering under the locked intent.
	result := &ConversationResult{
		Authenticated: true,
		Intent:        sess.LockedIntent,
		SessionID:     sess.ID,
	}
	if reply, ok := s.respondWithLiveData(ctx, sess, message); ok {
		result.Reply = reply
		result.LiveDataUsed = true
	} else {
		result.Reply = "I'm having technical difficulty answering that right now. Please try again shortly."
	}
	s.store.Save(sess)
	return result
}

// handleIntentChange re-locks the session onto the new intent. A verified
// session keeps its profile; only the intent is re-locked. Switching to an
// intent that needs no authentication drops the authentication linkage.
func (s *ConversationService) handleIntentChange(ctx context.Context, sess *session.Session, it intent.Intent, message string) *ConversationResult {
	if intent.RequiresAuthentication(it) {
		previous := sess.LockedIntent
		sess.LockedIntent = string(it)
		s.store.Save(sess)

		s.logger.Conversation().Info("Locked intent changed",
			"sessionId", logging.MaskSessionID(sess.ID),
			"from", previous,
			"to", string(it))

		result := &ConversationResult{
			Authenticated: true,
			Intent:        string(it),
			SessionID:     sess.ID,
		}
		if reply, ok := s.respondWithLiveData(ctx, sess, message); ok {
			result.Reply = reply
			result.LiveDataUsed = true
		} else {
			result.Reply = "Sure, let's talk about " + intent.Label(it) + ". What would you like to know?"
		}
		return result
	}

	// New intent is open to everyone; drop the authentication linkage.
	sess.Authenticated = false
	sess.LockedIntent = ""
	sess.Profile = nil
	sess.AuthState = nil
	s.store.Save(sess)

	s.logger.Conversation().Info("Authentication linkage dropped on intent change",
		"sessionId", logging.MaskSessionID(sess.ID),
		"to", string(it))

	return &ConversationResult{
		Reply:     s.generalReply(it),
		Intent:    string(it),
		SessionID: sess.ID,
	}
}

// respondWithLiveData delegates to the Live Data Responder. Failures degrade
// to a canned reply; they never disturb session state.
func (s *ConversationService) respondWithLiveData(ctx context.Context, sess *session.Session, message string) (string, bool) {
	if s.liveData == nil || sess.Profile == nil {
		return "", false
	}

	resp, err := s.liveData.Respond(ctx, sess.LockedIntent, sess.Profile, message)
	if err != nil {
		s.logger.LogError(logging.ChannelLiveData, "respond", err, sess.ID)
		return "", false
	}
	return resp.Reply, true
}

// generalReply answers the non-authenticated intents.
func (s *ConversationService) generalReply(it intent.Intent) string {
	switch it {
	case intent.Greeting:
		return "Hello! I can help you with claims, payments, pensions, contributions and more. What do you need today?"
	case intent.OfficeInfo:
		return "Our offices are open Monday to Friday, 08:00 to 17:00. You can also reach us any time through this chat."
	default:
		return "I can help with claims, payments, pensions, contributions, employer services and general questions. Could you tell me a bit more about what you need?"
	}
}
