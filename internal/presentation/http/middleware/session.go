// Package middleware provides gin middleware for the presentation layer.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/helixdesk/helixdesk-go/internal/infrastructure/security"
)

// SessionIDHeader carries the opaque conversation session id.
const SessionIDHeader = "X-Helixdesk-Session-ID"

const sessionIDKey = "helixdesk_session_id"

// SessionMiddleware extracts the session id from the request header, minting
// a fresh ULID when the widget has none yet. The id is echoed back so the
// client can persist it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if sessionID == "" {
			sessionID = security.GenerateULID()
		}

		c.Set(sessionIDKey, sessionID)
		c.Header(SessionIDHeader, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id established by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	if id, exists := c.Get(sessionIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
