// Package repository persists users in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	identitydomain "authgate/backend/internal/identity/domain"
	"authgate/backend/internal/user/domain"
)

const userColumns = `id, email, password_hash, failed_login_attempts, locked_until,
	last_login_at, last_login_ip, last_login_user_agent, created_at, updated_at`

const (
	getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	emailExists = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	upsertUser = `INSERT INTO users (` + userColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		email = EXCLUDED.email,
		password_hash = EXCLUDED.password_hash,
		failed_login_attempts = EXCLUDED.failed_login_attempts,
		locked_until = EXCLUDED.locked_until,
		last_login_at = EXCLUDED.last_login_at,
		last_login_ip = EXCLUDED.last_login_ip,
		last_login_user_agent = EXCLUDED.last_login_user_agent,
		updated_at = EXCLUDED.updated_at`
)

// PostgresRepository is the Postgres-backed user store. Lookups match on the
// normalized email stored in the unique email column.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id identitydomain.UserID) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByID, id.String()))
}

// GetByEmail returns the user with the given normalized email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email identitydomain.Email) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmail, email.Normalized()))
}

// EmailExists reports whether an account with the normalized email exists,
// without fetching the row.
func (r *PostgresRepository) EmailExists(ctx context.Context, email identitydomain.Email) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, emailExists, email.Normalized()).Scan(&exists); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

// Save upserts the user. A unique violation on the email column is reported
// as domain.ErrDuplicateEmail so the service can map it to a conflict even
// when the earlier existence check raced with a concurrent registration.
func (r *PostgresRepository) Save(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, upsertUser,
		u.ID.String(),
		u.Email.Normalized(),
		u.PasswordHash,
		u.FailedLoginAttempts,
		timeToNull(u.LockedUntil),
		timeToNull(u.LastLoginAt),
		stringToNull(u.LastLoginIP),
		stringToNull(u.LastLoginUserAgent),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		rawID, rawEmail   string
		lockedUntil       sql.NullTime
		lastLoginAt       sql.NullTime
		lastIP, lastAgent sql.NullString
		u                 domain.User
	)
	err := row.Scan(&rawID, &rawEmail, &u.PasswordHash, &u.FailedLoginAttempts,
		&lockedUntil, &lastLoginAt, &lastIP, &lastAgent, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if u.ID, err = identitydomain.ParseUserID(rawID); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if u.Email, err = identitydomain.NewEmail(rawEmail); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		u.LockedUntil = &t
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		u.LastLoginAt = &t
	}
	u.LastLoginIP = lastIP.String
	u.LastLoginUserAgent = lastAgent.String
	return &u, nil
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stringToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
