// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helixdesk/helixdesk-go/internal/application/container"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/cleanup"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
	schemadb "github.com/helixdesk/helixdesk-go/internal/infrastructure/database"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/performance"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/persistence/database"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/runtime"
	"github.com/helixdesk/helixdesk-go/internal/presentation/http/server"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("Initializing Helixdesk...")

	// Step 1: Channeled logger and performance tracker
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	// Step 2: Durable store connection
	driverName, dataSourceName := database.ConnectionDetails()
	logger.Startup().Info("Connecting durable session store", "driver", driverName)
	if driverName == "libsql" {
		if err := database.TestTursoConnectionWithLogger(config.TursoURL, config.TursoToken, logger); err != nil {
			return fmt.Errorf("turso connection test failed: %w", err)
		}
	}
	db, err := database.NewConnectionWithLogger(driverName, dataSourceName, logger)
	if err != nil {
		return fmt.Errorf("failed to connect durable store: %w", err)
	}

	// Step 3: Schema
	logger.Startup().Info("Ensuring durable store schema...")
	if err := schemadb.NewTableCreator().CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Step 4: Cache tier
	logger.Startup().Info("Initializing cache system...")
	cacheManager := manager.NewManager(logger)

	// Step 5: Application context and DI container
	rt := &runtime.Context{
		Database:     db,
		CacheManager: cacheManager,
		Logger:       logger,
	}
	appContainer := container.NewContainer(rt, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(cacheManager, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)

	// Step 7: Ops broadcaster
	go appContainer.OpsBroadcaster.Run()
	logger.Startup().Info("Ops broadcaster started")

	// Step 8: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	// Step 9: Graceful shutdown wiring
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Close durable store
	logger.Shutdown().Info("Closing durable store...")
	if err := rt.Close(); err != nil {
		logger.Shutdown().Error("Error closing durable store", "error", err.Error())
	} else {
		logger.Shutdown().Info("Durable store closed successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
