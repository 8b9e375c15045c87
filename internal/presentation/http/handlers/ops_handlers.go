package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/helixdesk/helixdesk-go/internal/application/container"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/messaging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
)

// OpsHandlers handles the operations dashboard surface: store health, log
// levels, the live log stream, and the session-map websocket.
type OpsHandlers struct {
	container *container.Container
}

// NewOpsHandlers creates ops handlers with injected dependencies
func NewOpsHandlers(container *container.Container) *OpsHandlers {
	return &OpsHandlers{container: container}
}

// GetDBStatus handles GET /api/v1/ops/db/status
func (h *OpsHandlers) GetDBStatus(c *gin.Context) {
	result := map[string]any{
		"status":    "checking",
		"timestamp": time.Now(),
	}

	db := h.container.Runtime.Database
	if db == nil {
		result["status"] = "error"
		result["error"] = "no database connection"
		c.JSON(http.StatusOK, result)
		return
	}

	var testResult int
	if err := db.QueryRow("SELECT 1").Scan(&testResult); err != nil {
		result["status"] = "error"
		result["error"] = fmt.Sprintf("connection test failed: %v", err)
		c.JSON(http.StatusOK, result)
		return
	}

	missing := []string{}
	for _, table := range []string{"sessions", "auth_events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			missing = append(missing, table)
		}
	}

	result["status"] = "healthy"
	result["cachedSessions"] = h.container.CacheManager.SessionCount()
	if len(missing) > 0 {
		result["status"] = "degraded"
		result["missingTables"] = missing
	}
	c.JSON(http.StatusOK, result)
}

// GetPerfStats handles GET /api/v1/ops/perf
func (h *OpsHandlers) GetPerfStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.PerfTracker.GetOverallStats())
}

// StreamLogs handles the SSE connection for live log streaming.
func (h *OpsHandlers) StreamLogs(c *gin.Context) {
	broadcaster := logging.GetBroadcaster()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	channelFilter := c.DefaultQuery("channel", "all")
	levelFilter := c.DefaultQuery("level", "INFO")
	logLevel, ok := parseLogLevel(levelFilter)
	if !ok {
		logLevel = slog.LevelInfo
	}

	filters := logging.AppliedFilters{
		Channel: logging.Channel(channelFilter),
		Level:   logLevel,
	}

	client := broadcaster.NewClient(filters)
	broadcaster.RegisterClient(client)
	defer broadcaster.UnregisterClient(client)

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetLogLevels handles GET /api/v1/ops/logs/levels
func (h *OpsHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.Logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/v1/ops/logs/levels
func (h *OpsHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	level, ok := parseLogLevel(req.Level)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}

	if err := h.container.Logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, req.Level)})
}

var opsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionMapSocket handles GET /api/v1/ops/ws - upgrades to a websocket fed
// by the ops broadcaster with live session-state counts.
func (h *OpsHandlers) SessionMapSocket(c *gin.Context) {
	conn, err := opsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.container.Logger.SSE().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.OpsClient{
		Conn: conn,
		Send: make(chan []byte, 4),
	}
	h.container.OpsBroadcaster.Register(client)

	go func() {
		defer func() {
			h.container.OpsBroadcaster.Unregister(client)
			conn.Close()
		}()
		for message := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.container.OpsBroadcaster.Unregister(client)
				return
			}
		}
	}()
}

func parseLogLevel(value string) (slog.Level, bool) {
	switch value {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
