package cleanup

import (
	"context"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
)

// Worker evicts idle, synchronized sessions from the in-memory tier. The
// durable tier is never touched here; an evicted session is recovered from
// it on the next load.
type Worker struct {
	cacheManager *manager.Manager
	config       *Config
	logger       *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cacheManager *manager.Manager, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cacheManager: cacheManager,
		config:       config,
		logger:       logger,
	}
}

// Start begins the cleanup worker routine, using the configured interval
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.System().Info("Cache cleanup worker started",
		"interval", w.config.CleanupInterval,
		"idleTimeout", w.config.SessionIdleTimeout)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.performCleanup()
		}
	}
}

func (w *Worker) performCleanup() {
	start := time.Now()
	before := w.cacheManager.SessionCount()
	evicted := w.cacheManager.EvictIdleSessions(w.config.SessionIdleTimeout)

	if evicted > 0 {
		w.logger.Cache().Info("Cache cleanup finished",
			"evicted", evicted,
			"remaining", before-evicted,
			"duration", time.Since(start))
	} else {
		w.logger.Cache().Debug("Cache cleanup completed - no idle sessions found",
			"sessions", before,
			"duration", time.Since(start))
	}
}
