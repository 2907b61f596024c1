package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

type fakeStore struct {
	users    map[uuid.UUID]UserRecord
	byEmail  map[string]uuid.UUID
	sessions map[string]SessionRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]UserRecord{},
		byEmail:  map[string]uuid.UUID{},
		sessions: map[string]SessionRecord{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, email, passwordHash, displayName string) (UserRecord, error) {
	if _, exists := f.byEmail[email]; exists {
		return UserRecord{}, duplicateEmailErr()
	}
	u := UserRecord{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	f.byEmail[email] = u.ID
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return UserRecord{}, pgx.ErrNoRows
	}
	return f.users[id], nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (UserRecord, error) {
	u, ok := f.users[id]
	if !ok {
		return UserRecord{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) CreateSession(_ context.Context, userID uuid.UUID, refreshHash string, expiresAt time.Time) (SessionRecord, error) {
	s := SessionRecord{
		ID:          uuid.New(),
		UserID:      userID,
		RefreshHash: refreshHash,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	f.sessions[refreshHash] = s
	return s, nil
}

func (f *fakeStore) GetSessionByHash(_ context.Context, refreshHash string) (SessionRecord, error) {
	s, ok := f.sessions[refreshHash]
	if !ok {
		return SessionRecord{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeStore) RotateSession(_ context.Context, sessionID uuid.UUID, refreshHash string, expiresAt time.Time) error {
	for hash, s := range f.sessions {
		if s.ID == sessionID {
			delete(f.sessions, hash)
			s.RefreshHash = refreshHash
			s.ExpiresAt = expiresAt
			f.sessions[refreshHash] = s
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeStore) DeleteSessionByHash(_ context.Context, refreshHash string) error {
	delete(f.sessions, refreshHash)
	return nil
}

func (f *fakeStore) DeleteSessionsByUser(_ context.Context, userID uuid.UUID) error {
	for hash, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, hash)
		}
	}
	return nil
}

func duplicateEmailErr() error {
	return &duplicateErr{}
}

type duplicateErr struct{}

func (*duplicateErr) Error() string { return "duplicate email" }

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Store:  store,
		Secret: "test-secret-please-ignore",
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	user, err := svc.Register(context.Background(), "Ivan@Example.BG", "correct horse", "Ivan")
	require.NoError(t, err)
	require.Equal(t, "ivan@example.bg", user.Email)
	require.Equal(t, "Ivan", user.DisplayName)

	result, err := svc.Login(context.Background(), "ivan@example.bg", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.Equal(t, user.ID, result.User.ID)

	subject, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.Register(context.Background(), "a@b.bg", "short", "")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@b.bg", "password-one", "")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@b.bg", "password-two")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@b.bg", "password-one", "")
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "a@b.bg", "password-one")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the old refresh token is no longer valid after rotation
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestRefreshExpiredSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@b.bg", "password-one", "")
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "a@b.bg", "password-one")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return time.Now().Add(31 * 24 * time.Hour) })

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
	require.Empty(t, store.sessions)
}

func TestLogoutDeletesSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), "a@b.bg", "password-one", "")
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "a@b.bg", "password-one")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.Empty(t, store.sessions)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.ParseAccessToken("not-a-token")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNAUTHORIZED", appErr.Code)
}
