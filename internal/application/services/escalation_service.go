package services

import (
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/email"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/email/templates"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// EscalationService raises a security alert when one session keeps failing
// identity verification. The email client is optional; without it the alert
// is log-only.
type EscalationService struct {
	emailService email.Service
	logger       *logging.ChanneledLogger
}

// NewEscalationService creates a new escalation service
func NewEscalationService(emailService email.Service, logger *logging.ChanneledLogger) *EscalationService {
	return &EscalationService{
		emailService: emailService,
		logger:       logger,
	}
}

// ShouldEscalate reports whether the session has hit the failure threshold.
func (s *EscalationService) ShouldEscalate(sess *session.Session) bool {
	return sess.FailedAttempts >= config.MaxVerificationFailures
}

// RaiseAlert logs the escalation and, when configured, emails the alert
// recipient. Failures to deliver the email are logged and swallowed; the
// conversation flow never depends on it.
func (s *EscalationService) RaiseAlert(sess *session.Session, intent, lastOutcome string) {
	maskedID := logging.MaskSessionID(sess.ID)

	s.logger.Alert().Warn("Verification failure threshold reached",
		"sessionId", maskedID,
		"intent", intent,
		"failedAttempts", sess.FailedAttempts,
		"lastOutcome", lastOutcome)

	if s.emailService == nil || config.EscalationAlertRecipient == "" {
		return
	}

	props := templates.EscalationAlertProps{
		MaskedSessionID: maskedID,
		Intent:          intent,
		FailedAttempts:  sess.FailedAttempts,
		LastOutcome:     lastOutcome,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}

	go func() {
		if err := s.emailService.SendEscalationAlert(config.EscalationAlertRecipient, props); err != nil {
			s.logger.Alert().Error("Failed to send escalation alert email",
				"error", err.Error(), "sessionId", maskedID)
		}
	}()
}
