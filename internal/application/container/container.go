// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/helixdesk/helixdesk-go/internal/application/services"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/email"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/livedata"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/messaging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/runtime"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/verifier"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	SessionStoreService *services.SessionStoreService
	AuthGateService     *services.AuthGateService
	IntentService       *services.IntentService
	ConversationService *services.ConversationService
	EscalationService   *services.EscalationService

	// External collaborators
	VerifierClient verifier.Service
	LiveDataClient livedata.Service
	EmailService   email.Service

	// Infrastructure
	Runtime        *runtime.Context
	CacheManager   *manager.Manager
	OpsBroadcaster *messaging.OpsBroadcaster
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(rt *runtime.Context, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	cacheManager := rt.CacheManager

	verifierClient := verifier.NewClient(logger)
	liveDataClient := livedata.NewClient(logger)

	// Email is optional: without RESEND_API_KEY escalations are log-only.
	emailService, err := email.NewService()
	if err != nil {
		logger.System().Warn("Email service not configured, escalation alerts are log-only", "reason", err.Error())
		emailService = nil
	}

	escalationService := services.NewEscalationService(emailService, logger)
	sessionStoreService := services.NewSessionStoreService(cacheManager, rt.SessionRepo(), logger, perfTracker)
	authGateService := services.NewAuthGateService(verifierClient, rt.AuthEventRepo(), escalationService, logger, perfTracker)
	intentService := services.NewIntentService(logger, perfTracker)
	conversationService := services.NewConversationService(
		sessionStoreService,
		authGateService,
		intentService,
		liveDataClient,
		cacheManager,
		logger,
		perfTracker,
	)

	return &Container{
		SessionStoreService: sessionStoreService,
		AuthGateService:     authGateService,
		IntentService:       intentService,
		ConversationService: conversationService,
		EscalationService:   escalationService,

		VerifierClient: verifierClient,
		LiveDataClient: liveDataClient,
		EmailService:   emailService,

		Runtime:        rt,
		CacheManager:   cacheManager,
		OpsBroadcaster: messaging.NewOpsBroadcaster(cacheManager),
		Logger:         logger,
		PerfTracker:    perfTracker,
	}
}
