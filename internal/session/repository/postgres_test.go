package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	identitydomain "authgate/backend/internal/identity/domain"
	"authgate/backend/internal/session/domain"
)

var sessionCols = []string{"id", "user_id", "csrf_token", "ip_address", "user_agent",
	"created_at", "last_activity_at", "expires_at"}

func newTestRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newTestRepo(t)
	defer db.Close()

	id := identitydomain.NewSessionID()
	userID := identitydomain.NewUserID()
	now := time.Now().UTC()
	token := "aa11" // stored token, already validated at creation time
	rows := sqlmock.NewRows(sessionCols).
		AddRow(id.String(), userID.String(), token, "203.0.113.9", "curl/8.0",
			now, now, now.Add(24*time.Hour))

	mock.ExpectQuery("FROM sessions WHERE id").
		WithArgs(id.String()).
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected session, got nil")
	}
	if s.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, s.UserID)
	}
	if s.CSRFToken.String() != token {
		t.Errorf("expected csrf token %q, got %q", token, s.CSRFToken)
	}
	if s.IsExpired(now) {
		t.Error("session should not be expired")
	}
}

func TestGetByID_NotFoundReturnsNil(t *testing.T) {
	repo, mock, db := newTestRepo(t)
	defer db.Close()

	id := identitydomain.NewSessionID()
	mock.ExpectQuery("FROM sessions WHERE id").
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil session, got %+v", s)
	}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newTestRepo(t)
	defer db.Close()

	token, err := identitydomain.NewCSRFToken(zeroReader{})
	if err != nil {
		t.Fatalf("new csrf token: %v", err)
	}
	now := time.Now().UTC()
	s := domain.New(identitydomain.NewSessionID(), identitydomain.NewUserID(), token,
		"203.0.113.9", "curl/8.0", now, 24*time.Hour)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(s.ID.String(), s.UserID.String(), token.String(),
			"203.0.113.9", "curl/8.0", s.CreatedAt, s.LastActivityAt, s.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelete_MissingRowIsNoError(t *testing.T) {
	repo, mock, db := newTestRepo(t)
	defer db.Close()

	id := identitydomain.NewSessionID()
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateActivity_DBError(t *testing.T) {
	repo, mock, db := newTestRepo(t)
	defer db.Close()

	id := identitydomain.NewSessionID()
	mock.ExpectExec("UPDATE sessions SET last_activity_at").
		WithArgs(id.String(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	if err := repo.UpdateActivity(context.Background(), id, time.Now()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
