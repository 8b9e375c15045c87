// Package livedata provides the HTTP client for the downstream live data
// responder that answers authenticated requests.
package livedata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// ErrUnavailable signals the responder could not produce an answer.
var ErrUnavailable = errors.New("live data responder unavailable")

// Response is the responder's answer to an authenticated request.
type Response struct {
	Reply       string   `json:"reply"`
	DataSources []string `json:"dataSources,omitempty"`
}

// Service defines live data operations for authenticated sessions.
type Service interface {
	Respond(ctx context.Context, intent string, profile *session.Profile, message string) (*Response, error)
}

// Client is the HTTP implementation of the live data Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

// NewClient creates a responder client with the configured base URL and timeout.
func NewClient(logger *logging.ChanneledLogger) *Client {
	return &Client{
		baseURL: config.ResponderBaseURL,
		httpClient: &http.Client{
			Timeout: config.ResponderTimeout,
		},
		logger: logger,
	}
}

type respondRequest struct {
	Intent      string            `json:"intent"`
	UserType    string            `json:"userType"`
	DisplayName string            `json:"displayName"`
	Profile     map[string]string `json:"profile,omitempty"`
	Message     string            `json:"message"`
}

// Respond forwards an authenticated request to the responder.
func (c *Client) Respond(ctx context.Context, intent string, profile *session.Profile, message string) (*Response, error) {
	start := time.Now()

	payload, err := json.Marshal(respondRequest{
		Intent:      intent,
		UserType:    profile.UserType,
		DisplayName: profile.DisplayName,
		Profile:     profile.Extra,
		Message:     message,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/respond", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.LiveData().Error("Responder request failed", "error", err.Error(), "intent", intent, "duration", time.Since(start))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.LiveData().Error("Responder returned unexpected status", "status", resp.StatusCode, "intent", intent)
		return nil, ErrUnavailable
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.LiveData().Error("Failed to decode responder payload", "error", err.Error(), "intent", intent)
		return nil, ErrUnavailable
	}

	c.logger.LiveData().Info("Live data response received",
		"intent", intent,
		"sources", len(body.DataSources),
		"duration", time.Since(start))

	return &body, nil
}
