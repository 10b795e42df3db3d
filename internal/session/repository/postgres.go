// Package repository persists sessions in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	identitydomain "authgate/backend/internal/identity/domain"
	"authgate/backend/internal/session/domain"
)

const sessionColumns = `id, user_id, csrf_token, ip_address, user_agent,
	created_at, last_activity_at, expires_at`

const (
	getSession = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	insertSession = `INSERT INTO sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	deleteSession = `DELETE FROM sessions WHERE id = $1`

	// last_activity_at only ever moves forward, so a stale best-effort update
	// arriving late can never rewind a newer one.
	updateActivity = `UPDATE sessions SET last_activity_at = $2
	WHERE id = $1 AND last_activity_at < $2`
)

// PostgresRepository is the Postgres-backed session store.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id identitydomain.SessionID) (*domain.Session, error) {
	var (
		rawID, rawUserID, rawToken string
		ip, userAgent              sql.NullString
		s                          domain.Session
	)
	row := r.db.QueryRowContext(ctx, getSession, id.String())
	err := row.Scan(&rawID, &rawUserID, &rawToken, &ip, &userAgent,
		&s.CreatedAt, &s.LastActivityAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if s.ID, err = identitydomain.ParseSessionID(rawID); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if s.UserID, err = identitydomain.ParseUserID(rawUserID); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.CSRFToken = identitydomain.CSRFTokenFromStored(rawToken)
	s.IPAddress = ip.String
	s.UserAgent = userAgent.String
	return &s, nil
}

// Create persists the session to the database.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx, insertSession,
		s.ID.String(),
		s.UserID.String(),
		s.CSRFToken.String(),
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""},
		sql.NullString{String: s.UserAgent, Valid: s.UserAgent != ""},
		s.CreatedAt,
		s.LastActivityAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Delete removes the session. Deleting a session that does not exist is a
// no-op, which keeps logout idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id identitydomain.SessionID) error {
	if _, err := r.db.ExecContext(ctx, deleteSession, id.String()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UpdateActivity advances the session's last-activity stamp. Best-effort: the
// caller may discard the error.
func (r *PostgresRepository) UpdateActivity(ctx context.Context, id identitydomain.SessionID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, updateActivity, id.String(), at); err != nil {
		return fmt.Errorf("update session activity: %w", err)
	}
	return nil
}
