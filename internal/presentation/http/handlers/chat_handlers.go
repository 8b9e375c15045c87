// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	assemblyai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/gin-gonic/gin"

	"github.com/helixdesk/helixdesk-go/internal/application/container"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/presentation/http/middleware"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// ChatHandlers contains the conversation entry point handlers
type ChatHandlers struct {
	container *container.Container
}

// NewChatHandlers creates chat handlers with injected dependencies
func NewChatHandlers(container *container.Container) *ChatHandlers {
	return &ChatHandlers{container: container}
}

// ChatRequest is the inbound message payload.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// PostMessage handles POST /api/v1/chat/message
func (h *ChatHandlers) PostMessage(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result := h.container.ConversationService.ProcessUserRequest(c.Request.Context(), req.Message, sessionID)
	c.JSON(http.StatusOK, result)
}

// PostAuthInput handles POST /api/v1/chat/auth - one turn of the credential dialogue
func (h *ChatHandlers) PostAuthInput(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	result := h.container.ConversationService.ProcessAuthenticationInput(c.Request.Context(), req.Message, sessionID)
	c.JSON(http.StatusOK, result)
}

// VoiceRequest carries a hosted audio note to transcribe.
type VoiceRequest struct {
	AudioURL string `json:"audioUrl" binding:"required"`
}

// PostVoice handles POST /api/v1/chat/voice - transcribes a voice note and
// routes the transcript through the normal conversation flow.
func (h *ChatHandlers) PostVoice(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	logger := h.container.Logger

	if config.AAIAPIKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	var req VoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audioUrl is required"})
		return
	}

	marker := h.container.PerfTracker.StartOperation("voice_transcription", sessionID)
	defer h.container.PerfTracker.CompleteOperation(marker)

	client := assemblyai.NewClient(config.AAIAPIKey)

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.TranscriptionTimeout)
	defer cancel()

	start := time.Now()
	transcript, err := client.Transcripts.TranscribeFromURL(ctx, req.AudioURL, nil)
	if err != nil {
		logger.LogError(logging.ChannelConversation, "voice_transcription", err, sessionID)
		marker.SetError(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not transcribe the voice note"})
		return
	}

	text := ""
	if transcript.Text != nil {
		text = strings.TrimSpace(*transcript.Text)
	}
	if text == "" {
		marker.SetSuccess(true)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "the voice note contained no speech"})
		return
	}

	logger.Conversation().Info("Voice note transcribed",
		"sessionId", logging.MaskSessionID(sessionID),
		"chars", len(text),
		"duration", time.Since(start))
	marker.SetSuccess(true)

	result := h.container.ConversationService.ProcessUserRequest(c.Request.Context(), text, sessionID)
	c.JSON(http.StatusOK, gin.H{
		"transcript": text,
		"result":     result,
	})
}
