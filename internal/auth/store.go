package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord is the persisted user row.
type UserRecord struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRecord is a refresh-token session row. RefreshHash stores a
// SHA-256 digest; the raw token never touches the database.
type SessionRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	RefreshHash string
	ExpiresAt   time.Time
	RevokedAt   *time.Time
	CreatedAt   time.Time
}

// Store abstracts user and session persistence so the service can be
// tested against an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, displayName string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (UserRecord, error)
	CreateSession(ctx context.Context, userID uuid.UUID, refreshHash string, expiresAt time.Time) (SessionRecord, error)
	GetSessionByHash(ctx context.Context, refreshHash string) (SessionRecord, error)
	RotateSession(ctx context.Context, sessionID uuid.UUID, refreshHash string, expiresAt time.Time) error
	DeleteSessionByHash(ctx context.Context, refreshHash string) error
	DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) error
}

// PGStore implements Store on top of a pgx connection pool.
type PGStore struct {
	Pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// ErrNotFound is returned when a user or session row does not exist.
var ErrNotFound = pgx.ErrNoRows

func (s *PGStore) CreateUser(ctx context.Context, email, passwordHash, displayName string) (UserRecord, error) {
	const q = `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, display_name, created_at, updated_at`
	var u UserRecord
	err := s.Pool.QueryRow(ctx, q, email, passwordHash, displayName).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *PGStore) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	const q = `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users WHERE email = $1`
	var u UserRecord
	err := s.Pool.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *PGStore) GetUserByID(ctx context.Context, id uuid.UUID) (UserRecord, error) {
	const q = `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users WHERE id = $1`
	var u UserRecord
	err := s.Pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *PGStore) CreateSession(ctx context.Context, userID uuid.UUID, refreshHash string, expiresAt time.Time) (SessionRecord, error) {
	const q = `
		INSERT INTO sessions (user_id, refresh_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, refresh_hash, expires_at, revoked_at, created_at`
	var sess SessionRecord
	err := s.Pool.QueryRow(ctx, q, userID, refreshHash, expiresAt).Scan(
		&sess.ID, &sess.UserID, &sess.RefreshHash, &sess.ExpiresAt, &sess.RevokedAt, &sess.CreatedAt,
	)
	return sess, err
}

func (s *PGStore) GetSessionByHash(ctx context.Context, refreshHash string) (SessionRecord, error) {
	const q = `
		SELECT id, user_id, refresh_hash, expires_at, revoked_at, created_at
		FROM sessions WHERE refresh_hash = $1`
	var sess SessionRecord
	err := s.Pool.QueryRow(ctx, q, refreshHash).Scan(
		&sess.ID, &sess.UserID, &sess.RefreshHash, &sess.ExpiresAt, &sess.RevokedAt, &sess.CreatedAt,
	)
	return sess, err
}

func (s *PGStore) RotateSession(ctx context.Context, sessionID uuid.UUID, refreshHash string, expiresAt time.Time) error {
	const q = `UPDATE sessions SET refresh_hash = $2, expires_at = $3 WHERE id = $1`
	_, err := s.Pool.Exec(ctx, q, sessionID, refreshHash, expiresAt)
	return err
}

func (s *PGStore) DeleteSessionByHash(ctx context.Context, refreshHash string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM sessions WHERE refresh_hash = $1`, refreshHash)
	return err
}

func (s *PGStore) DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}
