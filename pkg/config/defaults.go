// Package config provides centralized default values for Helixdesk
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Durable Store Configuration
	DatabasePath string
	TursoURL     string
	TursoToken   string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Session Configuration
	MaxSessions        int
	SessionIdleTimeout time.Duration
	CleanupInterval    time.Duration

	// Authentication Configuration
	JWTSecret                string
	AESKey                   string
	ConversationTokenTTL     time.Duration
	MaxVerificationFailures  int
	EscalationAlertRecipient string

	// External Service Configuration
	VerifierBaseURL  string
	VerifierTimeout  time.Duration
	ResponderBaseURL string
	ResponderTimeout time.Duration

	// Voice Note Configuration
	AAIAPIKey            string
	TranscriptionTimeout time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Durable Store Configuration
	DatabasePath = getEnvString("DATABASE_PATH", "helixdesk.db")
	TursoURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken = getEnvString("TURSO_AUTH_TOKEN", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Session Configuration
	MaxSessions = getEnvInt("MAX_SESSIONS", 5000)
	SessionIdleTimeout = getEnvDuration("SESSION_IDLE_TIMEOUT", 4*time.Hour)
	CleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute)

	// Authentication Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")
	ConversationTokenTTL = getEnvDuration("CONVERSATION_TOKEN_TTL", 24*time.Hour)
	MaxVerificationFailures = getEnvInt("MAX_VERIFICATION_FAILURES", 3)
	EscalationAlertRecipient = getEnvString("ESCALATION_ALERT_EMAIL", "")

	// External Service Configuration
	VerifierBaseURL = getEnvString("VERIFIER_BASE_URL", "http://localhost:9090")
	VerifierTimeout = getEnvDuration("VERIFIER_TIMEOUT", 10*time.Second)
	ResponderBaseURL = getEnvString("RESPONDER_BASE_URL", "http://localhost:9091")
	ResponderTimeout = getEnvDuration("RESPONDER_TIMEOUT", 20*time.Second)

	// Voice Note Configuration
	AAIAPIKey = getEnvString("AAI_API_KEY", "")
	TranscriptionTimeout = getEnvDuration("TRANSCRIPTION_TIMEOUT", 30*time.Second)
}
