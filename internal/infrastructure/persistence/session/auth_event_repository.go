package session

import (
	"database/sql"
	"time"

	"github.com/helixdesk/helixdesk-go/internal/domain/session"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/observability/logging"
	"github.com/helixdesk/helixdesk-go/internal/infrastructure/persistence/database"
)

// SQLAuthEventRepository is the SQL-based implementation of the
// AuthEventRepository audit trail.
type SQLAuthEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAuthEventRepository creates a new instance of the repository.
func NewSQLAuthEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAuthEventRepository {
	return &SQLAuthEventRepository{db: db, logger: logger}
}

// Record saves a new authentication event.
func (r *SQLAuthEventRepository) Record(event *session.AuthEvent) error {
	const query = `
		INSERT INTO auth_events (id, session_id, intent, outcome, credential_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := r.db.Exec(
		query,
		event.ID,
		event.SessionID,
		event.Intent,
		event.Outcome,
		nullableString(event.CredentialHash),
		event.CreatedAt.UTC().Format(time.RFC3339),
	)
	database.CheckAndLogSlowQuery(r.logger, "AUTH_EVENT_RECORD", time.Since(start), event.SessionID)
	return err
}

// FindBySessionID retrieves all authentication events for a session, newest first.
func (r *SQLAuthEventRepository) FindBySessionID(sessionID string) ([]*session.AuthEvent, error) {
	const query = `
		SELECT id, session_id, intent, outcome, credential_hash, created_at
		FROM auth_events
		WHERE session_id = ?
		ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.Query(query, sessionID)
	database.CheckAndLogSlowQuery(r.logger, "AUTH_EVENT_FIND_BY_SESSION", time.Since(start), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*session.AuthEvent
	for rows.Next() {
		event, err := r.scanAuthEventFromRows(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// scanAuthEventFromRows is a helper function to scan from sql.Rows into an AuthEvent struct.
func (r *SQLAuthEventRepository) scanAuthEventFromRows(rows *sql.Rows) (*session.AuthEvent, error) {
	var event session.AuthEvent
	var credentialHash sql.NullString
	var createdAtStr string

	err := rows.Scan(
		&event.ID,
		&event.SessionID,
		&event.Intent,
		&event.Outcome,
		&credentialHash,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	event.CredentialHash = credentialHash.String

	event.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
