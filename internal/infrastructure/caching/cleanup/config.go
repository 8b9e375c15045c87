// Package cleanup provides the background cache cleanup worker
package cleanup

import (
	"time"

	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// Config holds cleanup worker configuration
type Config struct {
	CleanupInterval    time.Duration
	SessionIdleTimeout time.Duration
}

// NewConfig creates cleanup configuration from application defaults
func NewConfig() *Config {
	return &Config{
		CleanupInterval:    config.CleanupInterval,
		SessionIdleTimeout: config.SessionIdleTimeout,
	}
}
