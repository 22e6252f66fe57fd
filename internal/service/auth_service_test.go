package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulane/lms-api/internal/models"
	appErrors "github.com/edulane/lms-api/pkg/errors"
)

type mockAuthUserRepo struct {
	users          map[string]*models.User
	usersByEmail   map[string]*models.User
	refreshTokens  map[string]*models.RefreshToken
	createdTokens  []*models.RefreshToken
	revokedIDs     []string
	lastLoginID    string
	passwordUserID string
	passwordHash   string
	timezoneUserID string
	timezone       string
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{
		users:         make(map[string]*models.User),
		usersByEmail:  make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthUserRepo) addUser(user *models.User) {
	m.users[user.ID] = user
	m.usersByEmail[user.Email] = user
}

func (m *mockAuthUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	m.lastLoginID = id
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.passwordUserID = id
	m.passwordHash = passwordHash
	return nil
}

func (m *mockAuthUserRepo) UpdateTimezone(_ context.Context, id, timezone string) error {
	m.timezoneUserID = id
	m.timezone = timezone
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	m.createdTokens = append(m.createdTokens, token)
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.refreshTokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for _, stored := range m.refreshTokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func newAuthService(repo *mockAuthUserRepo) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "lms-test",
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	return &models.User{
		ID:           "user-1",
		Email:        "student@example.com",
		FullName:     "Test Student",
		Role:         models.RoleStudent,
		PasswordHash: hashPassword(t, "correct-horse"),
		Timezone:     "Asia/Tokyo",
		Active:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "Asia/Tokyo", resp.User.Timezone)
	require.Len(t, repo.createdTokens, 1)
	assert.Equal(t, "user-1", repo.lastLoginID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newMockAuthUserRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthUserRepo()
	user := activeUser(t)
	user.Active = false
	repo.addUser(user)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "student@example.com", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{AccessTokenSecret: "different-secret"})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newAuthService(repo)

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revokedIDs, "rt-1")
}

func TestRefreshTokenRejectsRevoked(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Revoked:   true,
	}
	svc := newAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRejectsExpired(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := newAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.refreshTokens["stolen"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "someone-else",
		Token:     "stolen",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newAuthService(repo)

	err := svc.Logout(context.Background(), "stolen", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedIDs)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "not-it",
		NewPassword: "brand-new-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.passwordUserID)
}

func TestChangePasswordSuccess(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "brand-new-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", repo.passwordUserID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("brand-new-password")))
}

func TestUpdateTimezoneRejectsUnknownZone(t *testing.T) {
	svc := newAuthService(newMockAuthUserRepo())
	err := svc.UpdateTimezone(context.Background(), "user-1", "Mars/Olympus")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateTimezoneStoresZone(t *testing.T) {
	repo := newMockAuthUserRepo()
	svc := newAuthService(repo)
	require.NoError(t, svc.UpdateTimezone(context.Background(), "user-1", "Europe/Berlin"))
	assert.Equal(t, "Europe/Berlin", repo.timezone)
	assert.Equal(t, "user-1", repo.timezoneUserID)
}

func TestMeReturnsProfile(t *testing.T) {
	repo := newMockAuthUserRepo()
	repo.addUser(activeUser(t))
	svc := newAuthService(repo)

	user, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestMeUnknownUser(t *testing.T) {
	svc := newAuthService(newMockAuthUserRepo())

	_, err := svc.Me(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
