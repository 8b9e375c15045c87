// Package verifier provides the HTTP client for the external identity
// verification service.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// ErrUnavailable signals that the verifier could not be reached or did not
// answer in time. Callers must treat this as neither verified nor rejected.
var ErrUnavailable = errors.New("identity verifier unavailable")

// Result is the verifier's answer for a credential pair.
type Result struct {
	Success       bool
	Profile       *session.Profile
	FailureReason string
}

// Service defines identity verification operations.
type Service interface {
	Verify(ctx context.Context, nationalID, referenceNumber, intent string) (*Result, error)
}

// Client is the HTTP implementation of the verifier Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

// NewClient creates a verifier client with the configured base URL and timeout.
func NewClient(logger *logging.ChanneledLogger) *Client {
	return &Client{
		baseURL: config.VerifierBaseURL,
		httpClient: &http.Client{
			Timeout: config.VerifierTimeout,
		},
		logger: logger,
	}
}

type verifyRequest struct {
	NationalID      string `json:"nationalId"`
	ReferenceNumber string `json:"referenceNumber"`
	Intent          string `json:"intent"`
}

type verifyResponse struct {
	Verified      bool              `json:"verified"`
	UserType      string            `json:"userType"`
	DisplayName   string            `json:"displayName"`
	Extra         map[string]string `json:"extra"`
	FailureReason string            `json:"failureReason"`
}

// Verify submits a credential pair for verification. A definitive yes/no from
// the service returns a Result; transport failures, timeouts, and 5xx answers
// return ErrUnavailable.
func (c *Client) Verify(ctx context.Context, nationalID, referenceNumber, intent string) (*Result, error) {
	start := time.Now()

	payload, err := json.Marshal(verifyRequest{
		NationalID:      nationalID,
		ReferenceNumber: referenceNumber,
		Intent:          intent,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Verifier().Error("Verifier request failed", "error", err.Error(), "duration", time.Since(start))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.logger.Verifier().Error("Verifier returned server error", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Verifier().Error("Verifier returned unexpected status", "status", resp.StatusCode)
		return nil, fmt.Errorf("verifier returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Verifier().Error("Failed to decode verifier response", "error", err.Error())
		return nil, ErrUnavailable
	}

	c.logger.Verifier().Info("Verification completed",
		"verified", body.Verified,
		"userType", body.UserType,
		"duration", time.Since(start))

	result := &Result{Success: body.Verified, FailureReason: body.FailureReason}
	if body.Verified {
		result.Profile = &session.Profile{
			UserType:    body.UserType,
			DisplayName: body.DisplayName,
			Extra:       body.Extra,
		}
	}
	return result, nil
}
