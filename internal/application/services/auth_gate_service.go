package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/credentials"
	"github.com/helixdesk/helixdesk-go/internal/domain/intent"
	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/security"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/verifier"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// Audit outcomes recorded per verification attempt.
const (
	outcomeVerified    = "verified"
	outcomeRejected    = "rejected"
	outcomeUnavailable = "unavailable"
)

// AuthGateService drives the authentication state machine: issuing
// challenges, handling the multi-turn credential dialogue, and locking the
// verified intent to the session.
type AuthGateService struct {
	verifier   verifier.Service
	authEvents session.AuthEventRepository
	escalation *EscalationService
	logger     *logging.ChanneledLogger
	perf       *performance.Tracker
}

// NewAuthGateService creates a new authentication gate service
func NewAuthGateService(
	verifierService verifier.Service,
	authEvents session.AuthEventRepository,
	escalation *EscalationService,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *AuthGateService {
	return &AuthGateService{
		verifier:   verifierService,
		authEvents: authEvents,
		escalation: escalation,
		logger:     logger,
		perf:       perf,
	}
}

// AuthOutcome is the gate's answer to one authentication turn.
type AuthOutcome struct {
	Reply         string
	Authenticated bool
	Terminated    bool
	Token         string
	ReplayMessage string
	Err           error
}

// IssueChallenge records the pending intent and produces the challenge
// prompt naming the kind of help requested.
func (s *AuthGateService) IssueChallenge(sess *session.Session, it intent.Intent, message string) string {
	sess.PendingIntent = string(it)
	sess.PendingMessage = message

	s.logger.LogAuthOperation("challenge_issued", sess.ID, true, map[string]any{
		"intent": string(it),
	})

	return fmt.Sprintf(
		"To help you with %s, I first need to verify your identity. "+
			"Please reply with your national ID and reference number, for example: 123456/78/9 PEN-1234567. "+
			"You can also say \"help\" for guidance or \"cancel\" to stop.",
		intent.Label(it))
}

// HandleAuthInput processes one turn of the credential dialogue. It mutates
// the session in place; the caller is responsible for saving (or clearing)
// it afterwards.
func (s *AuthGateService) HandleAuthInput(ctx context.Context, sess *session.Session, message string) *AuthOutcome {
	marker := s.perf.StartOperation("auth_input", sess.ID)
	defer s.perf.CompleteOperation(marker)

	if !sess.IsChallengeIssued() {
		marker.SetError(ErrNoPendingAuthentication)
		return &AuthOutcome{
			Reply: "There is no identity verification in progress. Just tell me what you need help with.",
			Err:   ErrNoPendingAuthentication,
		}
	}

	pendingIntent := intent.Intent(sess.PendingIntent)

	if intent.IsHelpCommand(message) {
		marker.SetSuccess(true)
		return &AuthOutcome{Reply: s.guidance(pendingIntent)}
	}

	if intent.IsCancelCommand(message) {
		s.logger.LogAuthOperation("challenge_cancelled", sess.ID, true, map[string]any{
			"intent": sess.PendingIntent,
		})
		marker.SetSuccess(true)
		return &AuthOutcome{
			Reply:      "No problem, I've cancelled the verification. Feel free to reach out again whenever you're ready.",
			Terminated: true,
		}
	}

	parsed := credentials.Parse(message)
	switch parsed.Outcome {
	case credentials.Found:
		return s.verifyCredentials(ctx, sess, *parsed.Pair, marker)

	case credentials.MissingReference:
		marker.SetSuccess(true)
		return &AuthOutcome{
			Reply: "I found your national ID, but I still need your reference number. " +
				"It starts with two or three letters followed by digits, like PEN-1234567.",
		}

	case credentials.MissingNationalID:
		marker.SetSuccess(true)
		return &AuthOutcome{
			Reply: "I found your reference number, now I need your national ID. " +
				"It looks like 123456/78/9, or a plain number of nine or more digits.",
		}

	default:
		marker.SetSuccess(true)
		return &AuthOutcome{Reply: s.guidance(pendingIntent)}
	}
}

// verifyCredentials calls the Identity Verifier and applies transition 5.
func (s *AuthGateService) verifyCredentials(ctx context.Context, sess *session.Session, pair credentials.Pair, marker *performance.Marker) *AuthOutcome {
	pendingIntent := sess.PendingIntent

	result, err := s.verifier.Verify(ctx, pair.NationalID, pair.ReferenceNumber, pendingIntent)
	if err != nil {
		// Timeout or outage. Deny safely, stay in the challenge, invite retry.
		s.recordAuthEvent(sess.ID, pendingIntent, outcomeUnavailable, pair)
		s.logger.LogAuthOperation("verification_unavailable", sess.ID, false, map[string]any{
			"intent": pendingIntent,
		})
		marker.SetError(err)
		if errors.Is(err, verifier.ErrUnavailable) {
			err = ErrVerifierUnavailable
		}
		return &AuthOutcome{
			Reply: "I couldn't reach the verification service just now. Please send your details again in a moment.",
			Err:   err,
		}
	}

	if !result.Success {
		sess.FailedAttempts++
		s.recordAuthEvent(sess.ID, pendingIntent, outcomeRejected, pair)
		s.logger.LogAuthOperation("verification_rejected", sess.ID, false, map[string]any{
			"intent":         pendingIntent,
			"failedAttempts": sess.FailedAttempts,
		})
		marker.SetSuccess(true)

		reply := "Those details didn't match our records."
		if result.FailureReason != "" {
			reply = fmt.Sprintf("Those details didn't match our records (%s).", result.FailureReason)
		}
		reply += " Please check your national ID and reference number and try again."
		if s.escalation.ShouldEscalate(sess) {
			s.escalation.RaiseAlert(sess, pendingIntent, outcomeRejected)
			reply += " If the problem persists, please contact our support line for assistance."
		}
		return &AuthOutcome{Reply: reply, Err: ErrVerificationFailed}
	}

	// Success: lock the intent, store the verified identity, clear pending.
	now := time.Now().UTC()
	replay := sess.PendingMessage
	sess.Authenticated = true
	sess.LockedIntent = pendingIntent
	sess.Profile = result.Profile
	sess.AuthState = &session.AuthState{
		NationalID:      pair.NationalID,
		AuthenticatedAt: now,
		UserType:        result.Profile.UserType,
		Method:          "credential_pair",
	}
	sess.PendingIntent = ""
	sess.PendingMessage = ""
	sess.FailedAttempts = 0

	s.recordAuthEvent(sess.ID, pendingIntent, outcomeVerified, pair)
	s.logger.LogAuthOperation("verification_succeeded", sess.ID, true, map[string]any{
		"intent":   pendingIntent,
		"userType": result.Profile.UserType,
	})

	token, err := security.GenerateConversationToken(security.ConversationClaims{
		SessionID:    sess.ID,
		LockedIntent: sess.LockedIntent,
		UserType:     result.Profile.UserType,
		DisplayName:  result.Profile.DisplayName,
	}, config.JWTSecret, config.ConversationTokenTTL)
	if err != nil {
		s.logger.LogError(logging.ChannelAuth, "conversation_token", err, sess.ID)
	}

	marker.SetSuccess(true)
	return &AuthOutcome{
		Reply:         fmt.Sprintf("Thanks %s, your identity is verified.", result.Profile.DisplayName),
		Authenticated: true,
		Token:         token,
		ReplayMessage: replay,
	}
}

// recordAuthEvent appends one row to the audit trail. The credential pair is
// bcrypt-hashed; raw values are never written.
func (s *AuthGateService) recordAuthEvent(sessionID, intentName, outcome string, pair credentials.Pair) {
	hash, err := security.HashCredentialPair(pair.NationalID, pair.ReferenceNumber)
	if err != nil {
		s.logger.LogError(logging.ChannelAuth, "credential_hash", err, sessionID)
		hash = ""
	}

	event := &session.AuthEvent{
		ID:             security.GenerateULID(),
		SessionID:      sessionID,
		Intent:         intentName,
		Outcome:        outcome,
		CredentialHash: hash,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.authEvents.Record(event); err != nil {
		s.logger.LogError(logging.ChannelDatabase, "auth_event_record", err, sessionID)
	}
}

// guidance is the intent-specific help text shown during a challenge.
func (s *AuthGateService) guidance(it intent.Intent) string {
	return fmt.Sprintf(
		"To verify your identity for %s I need two things in one message: "+
			"your national ID (123456/78/9 or a plain number of nine or more digits) "+
			"and your reference number (two or three letters then digits, like PEN-1234567, or just the digits). "+
			"They can be in any order. Say \"cancel\" if you'd rather stop.",
		intent.Label(it))
}
