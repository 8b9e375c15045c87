// Package session provides the concrete SQL-based implementations of
// the session domain repositories (Session, AuthEvent).
package session

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/persistence/database"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/security"
	"github.com/helixdesk/helixdesk-go/pkg/config"
)

// SQLSessionRepository is the SQL-based implementation of the session Repository.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{db: db, logger: logger}
}

// FindByID retrieves a Session by its unique identifier.
func (r *SQLSessionRepository) FindByID(id string) (*session.Session, error) {
	const query = `
		SELECT id, created_at, last_accessed, status, authenticated,
		       locked_intent, pending_intent, pending_message, failed_attempts,
		       user_type, display_name, profile_payload, auth_method,
		       authenticated_at, encrypted_national_id
		FROM sessions
		WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)
	sess, err := r.scanSession(row)
	database.CheckAndLogSlowQuery(r.logger, "SESSION_FIND_BY_ID", time.Since(start), id)
	return sess, err
}

// Upsert writes the full session state keyed by session id. Repeated calls
// with the same state are harmless.
func (r *SQLSessionRepository) Upsert(sess *session.Session) error {
	const query = `
		INSERT INTO sessions (
			id, created_at, last_accessed, status, authenticated,
			locked_intent, pending_intent, pending_message, failed_attempts,
			user_type, display_name, profile_payload, auth_method,
			authenticated_at, encrypted_national_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_accessed = excluded.last_accessed,
			status = excluded.status,
			authenticated = excluded.authenticated,
			locked_intent = excluded.locked_intent,
			pending_intent = excluded.pending_intent,
			pending_message = excluded.pending_message,
			failed_attempts = excluded.failed_attempts,
			user_type = excluded.user_type,
			display_name = excluded.display_name,
			profile_payload = excluded.profile_payload,
			auth_method = excluded.auth_method,
			authenticated_at = excluded.authenticated_at,
			encrypted_national_id = excluded.encrypted_national_id`

	var userType, displayName, profilePayload sql.NullString
	if sess.Profile != nil {
		userType = sql.NullString{String: sess.Profile.UserType, Valid: true}
		displayName = sql.NullString{String: sess.Profile.DisplayName, Valid: true}
		if len(sess.Profile.Extra) > 0 {
			raw, err := json.Marshal(sess.Profile.Extra)
			if err != nil {
				return err
			}
			profilePayload = sql.NullString{String: string(raw), Valid: true}
		}
	}

	var authMethod, encryptedNationalID sql.NullString
	var authenticatedAt sql.NullString
	if sess.AuthState != nil {
		authMethod = sql.NullString{String: sess.AuthState.Method, Valid: true}
		authenticatedAt = sql.NullString{String: sess.AuthState.AuthenticatedAt.UTC().Format(time.RFC3339), Valid: true}
		if sess.AuthState.NationalID != "" {
			enc, err := security.EncryptNationalID(sess.AuthState.NationalID, config.AESKey)
			if err != nil {
				return err
			}
			encryptedNationalID = sql.NullString{String: enc, Valid: true}
		}
	}

	start := time.Now()
	_, err := r.db.Exec(
		query,
		sess.ID,
		sess.CreatedAt.UTC().Format(time.RFC3339),
		sess.LastAccessed.UTC().Format(time.RFC3339),
		string(sess.Status),
		sess.Authenticated,
		nullableString(sess.LockedIntent),
		nullableString(sess.PendingIntent),
		nullableString(sess.PendingMessage),
		sess.FailedAttempts,
		userType,
		displayName,
		profilePayload,
		authMethod,
		authenticatedAt,
		encryptedNationalID,
	)
	database.CheckAndLogSlowQuery(r.logger, "SESSION_UPSERT", time.Since(start), sess.ID)
	return err
}

// MarkInactive transitions a session to the inactive status, keeping the row
// for the audit trail.
func (r *SQLSessionRepository) MarkInactive(id string) error {
	const query = `
		UPDATE sessions
		SET status = ?, last_accessed = ?
		WHERE id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, string(session.StatusInactive), start.UTC().Format(time.RFC3339), id)
	database.CheckAndLogSlowQuery(r.logger, "SESSION_MARK_INACTIVE", time.Since(start), id)
	return err
}

// scanSession is a helper function to scan a sql.Row into a Session struct.
func (r *SQLSessionRepository) scanSession(row *sql.Row) (*session.Session, error) {
	var sess session.Session
	var status string
	var createdAtStr, lastAccessedStr string
	var lockedIntent, pendingIntent, pendingMessage sql.NullString
	var userType, displayName, profilePayload sql.NullString
	var authMethod, authenticatedAtStr, encryptedNationalID sql.NullString

	err := row.Scan(
		&sess.ID,
		&createdAtStr,
		&lastAccessedStr,
		&status,
		&sess.Authenticated,
		&lockedIntent,
		&pendingIntent,
		&pendingMessage,
		&sess.FailedAttempts,
		&userType,
		&displayName,
		&profilePayload,
		&authMethod,
		&authenticatedAtStr,
		&encryptedNationalID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}

	sess.Status = session.Status(status)
	sess.LockedIntent = lockedIntent.String
	sess.PendingIntent = pendingIntent.String
	sess.PendingMessage = pendingMessage.String

	sess.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}
	sess.LastAccessed, err = parseTimestamp(lastAccessedStr)
	if err != nil {
		return nil, err
	}

	if userType.Valid {
		profile := &session.Profile{
			UserType:    userType.String,
			DisplayName: displayName.String,
		}
		if profilePayload.Valid && profilePayload.String != "" {
			extra := make(map[string]string)
			if err := json.Unmarshal([]byte(profilePayload.String), &extra); err != nil {
				return nil, err
			}
			profile.Extra = extra
		}
		sess.Profile = profile
	}

	if authMethod.Valid {
		authState := &session.AuthState{
			Method:   authMethod.String,
			UserType: userType.String,
		}
		if authenticatedAtStr.Valid {
			authState.AuthenticatedAt, err = parseTimestamp(authenticatedAtStr.String)
			if err != nil {
				return nil, err
			}
		}
		if encryptedNationalID.Valid {
			authState.NationalID, err = security.DecryptNationalID(encryptedNationalID.String, config.AESKey)
			if err != nil {
				return nil, err
			}
		}
		sess.AuthState = authState
	}

	// A row read back from the durable tier is by definition synchronized.
	sess.SynchronizedWithDB = true

	return &sess, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Try alternative timestamp format if RFC3339 fails
		t, err = time.Parse("2006-01-02 15:04:05", value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t, nil
}
