package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helixdesk/helixdesk-go/internal/application/container"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/security"
	"github.com/helixdesk/helixdesk-go/internal/presentation/http/middleware"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// AuthHandlers contains authentication status and audit handlers
type AuthHandlers struct {
	container *container.Container
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(container *container.Container) *AuthHandlers {
	return &AuthHandlers{container: container}
}

// GetStatus handles GET /api/v1/auth/status - decodes the conversation token
// minted on successful verification.
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := security.ValidateJWT(authHeader[7:], config.JWTSecret)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	conversation := security.GetConversationClaims(claims)
	if conversation == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"sessionId":     conversation.SessionID,
		"lockedIntent":  conversation.LockedIntent,
		"userType":      conversation.UserType,
		"displayName":   conversation.DisplayName,
	})
}

// GetAuthEvents handles GET /api/v1/auth/events - the session's audit trail.
// Credential hashes are never serialized.
func (h *AuthHandlers) GetAuthEvents(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	events, err := h.container.Runtime.AuthEventRepo().FindBySessionID(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load authentication events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"events":    events,
	})
}
