package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/reg4rd/classroom-booking/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession stores a new session token for a teacher
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.TeacherID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	session.Token = strings.TrimSpace(session.Token)
	if session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.ExpiresAt = session.ExpiresAt.UTC()

	query := `
		INSERT INTO sessions (id, teacher_id, token, expires_at, revoked_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revokedAt.String = session.RevokedAt.UTC().Format(time.RFC3339)
		revokedAt.Valid = true
	}

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.TeacherID,
		session.Token,
		session.ExpiresAt.Format(time.RFC3339),
		revokedAt,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return persistence.Session{}, r.mapSessionError(err)
	}

	return session, nil
}

// GetSession retrieves a session by its token value
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, teacher_id, token, expires_at, revoked_at, created_at, updated_at
		FROM sessions
		WHERE token = ?
	`

	var session persistence.Session
	var expiresAtStr, createdAtStr, updatedAtStr string
	var revokedAt sql.NullString

	err := r.helper.QueryRow(ctx, query, token).Scan(
		&session.ID,
		&session.TeacherID,
		&session.Token,
		&expiresAtStr,
		&revokedAt,
		&createdAtStr,
		&updatedAtStr,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if revokedAt.Valid {
		if session.RevokedAt, err = parseTimePtr(revokedAt.String); err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
	}

	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return session, nil
}

// RevokeSession marks a session as revoked based on its token value
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	revokedAtUTC := revokedAt.UTC()

	query := `
		UPDATE sessions
		SET revoked_at = ?, updated_at = ?
		WHERE token = ?
	`

	result, err := r.helper.Exec(ctx, query,
		revokedAtUTC.Format(time.RFC3339),
		revokedAtUTC.Format(time.RFC3339),
		token,
	)

	if err != nil {
		return persistence.Session{}, r.mapSessionError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions that expired on or before the
// provided timestamp
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	query := `DELETE FROM sessions WHERE expires_at <= ?`

	_, err := r.helper.Exec(ctx, query, reference.UTC().Format(time.RFC3339))
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// mapSessionError maps SQLite errors to persistence errors for session operations
func (r *SessionRepository) mapSessionError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed"}) {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, []string{"CHECK constraint failed", "NOT NULL constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}

// parseTimePtr parses an RFC3339 timestamp into a *time.Time
func parseTimePtr(value string) (*time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
