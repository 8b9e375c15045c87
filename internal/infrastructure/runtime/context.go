// Package runtime holds the shared application context built once at boot.
package runtime

import (
	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/caching/manager"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/persistence/database"
	persistenceSession "github.com/helixdesk/helixdesk-go/internal/infrastructure/persistence/session"
)

// Context bundles the durable store and the cache tier so services and
// handlers share one wiring point.
type Context struct {
	Database     *database.DB
	CacheManager *manager.Manager
	Logger       *logging.ChanneledLogger
}

// Close cleans up the application context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetDatabase returns the durable store connection
func (ctx *Context) GetDatabase() *database.DB {
	return ctx.Database
}

// GetCacheManager returns the cache manager
func (ctx *Context) GetCacheManager() *manager.Manager {
	return ctx.CacheManager
}

// SessionRepo returns a session repository instance
func (ctx *Context) SessionRepo() session.Repository {
	return persistenceSession.NewSQLSessionRepository(ctx.Database, ctx.Logger)
}

// AuthEventRepo returns an authentication audit trail repository instance
func (ctx *Context) AuthEventRepo() session.AuthEventRepository {
	return persistenceSession.NewSQLAuthEventRepository(ctx.Database, ctx.Logger)
}
