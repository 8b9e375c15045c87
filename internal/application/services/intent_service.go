package services

import (
	"github.com/helixdesk/helixdesk-go/internal/domain/intent"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
)

// IntentService wraps the pure classifier with logging and timing.
type IntentService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewIntentService creates a new intent service
func NewIntentService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IntentService {
	return &IntentService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Classify scores the message against the intent catalog.
func (s *IntentService) Classify(message, sessionID string) (intent.Intent, float64) {
	marker := s.perfTracker.StartOperation("intent_classify", sessionID)
	defer s.perfTracker.CompleteOperation(marker)

	result, confidence := intent.Classify(message)

	marker.AddMetadata("intent", string(result))
	marker.AddMetadata("confidence", confidence)
	marker.SetSuccess(true)

	s.logger.Intent().Debug("Intent classified",
		"sessionId", logging.MaskSessionID(sessionID),
		"intent", string(result),
		"confidence", confidence,
		"requiresAuth", intent.RequiresAuthentication(result))

	return result, confidence
}
