package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yad2_tracker/internal/common"
	"yad2_tracker/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPasswords struct {
	mu      sync.Mutex
	hash    string
	readErr error
}

func (m *memPasswords) AdminPasswordHash(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hash, m.readErr
}

func (m *memPasswords) SetAdminPasswordHash(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hash = hash
	return nil
}

func newTestSessions(t *testing.T, adminPassword string) (*SessionService, *memPasswords) {
	t.Helper()
	cfg := &config.Config{
		AdminPassword: adminPassword,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
	}
	passwords := &memPasswords{}
	svc, err := NewSessionService(cfg, passwords, NewInMemoryBlocklist(time.Minute), zap.NewNop())
	require.NoError(t, err)
	return svc, passwords
}

func TestSessionService_LoginAndValidate(t *testing.T) {
	svc, _ := newTestSessions(t, "correct horse")

	token, expiresAt, err := svc.Login(context.Background(), "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionService_LoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestSessions(t, "correct horse")

	_, _, err := svc.Login(context.Background(), "battery staple")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestSessionService_LoginWithoutConfiguredPassword(t *testing.T) {
	svc, _ := newTestSessions(t, "")

	_, _, err := svc.Login(context.Background(), "anything")
	assert.True(t, errors.Is(err, common.ErrServiceUnavailable))
}

func TestSessionService_LoginPropagatesStoreError(t *testing.T) {
	svc, passwords := newTestSessions(t, "correct horse")
	passwords.readErr = errors.New("db down")

	_, _, err := svc.Login(context.Background(), "correct horse")
	require.Error(t, err)
	_, isAPI := common.IsAPIError(err)
	assert.False(t, isAPI)
}

func TestSessionService_ValidateRejectsBadTokens(t *testing.T) {
	svc, _ := newTestSessions(t, "correct horse")
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate(ctx, "not-a-token")
		assert.True(t, errors.Is(err, common.ErrUnauthorized))
	})

	t.Run("foreign secret", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			Issuer:    issuer,
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.Validate(ctx, forged)
		assert.True(t, errors.Is(err, common.ErrUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := svc.Login(ctx, "correct horse")
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err = svc.Validate(ctx, token)
		assert.True(t, errors.Is(err, common.ErrUnauthorized))
	})
}

func TestSessionService_Logout(t *testing.T) {
	svc, _ := newTestSessions(t, "correct horse")
	ctx := context.Background()

	token, expiresAt, err := svc.Login(ctx, "correct horse")
	require.NoError(t, err)
	claims, err := svc.Validate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID, expiresAt))

	_, err = svc.Validate(ctx, token)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	// A second session is unaffected.
	other, _, err := svc.Login(ctx, "correct horse")
	require.NoError(t, err)
	_, err = svc.Validate(ctx, other)
	assert.NoError(t, err)
}

func TestSessionService_ChangePassword(t *testing.T) {
	svc, passwords := newTestSessions(t, "correct horse")
	ctx := context.Background()

	_, _, err := svc.ChangePassword(ctx, "wrong", "new-password-1")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Empty(t, passwords.hash)

	fresh, _, err := svc.ChangePassword(ctx, "correct horse", "new-password-1")
	require.NoError(t, err)
	assert.NotEmpty(t, passwords.hash)
	_, err = svc.Validate(ctx, fresh)
	assert.NoError(t, err)

	_, _, err = svc.Login(ctx, "correct horse")
	assert.True(t, errors.Is(err, common.ErrUnauthorized), "stored hash overrides ADMIN_PASSWORD")

	_, _, err = svc.Login(ctx, "new-password-1")
	assert.NoError(t, err)
}

func TestSessionService_ChangePasswordRevokesEarlierSessions(t *testing.T) {
	svc, passwords := newTestSessions(t, "correct horse")
	ctx := context.Background()

	before, _, err := svc.Login(ctx, "correct horse")
	require.NoError(t, err)

	first, _, err := svc.ChangePassword(ctx, "correct horse", "new-password-1")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, before)
	assert.True(t, errors.Is(err, common.ErrUnauthorized), "env password session outlived the change")

	second, _, err := svc.ChangePassword(ctx, "new-password-1", "new-password-2")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, first)
	assert.True(t, errors.Is(err, common.ErrUnauthorized), "stored password session outlived the change")
	_, err = svc.Validate(ctx, second)
	assert.NoError(t, err)

	passwords.readErr = errors.New("db down")
	_, err = svc.Validate(ctx, second)
	require.Error(t, err)
	_, isAPI := common.IsAPIError(err)
	assert.False(t, isAPI)
}

func TestNewSessionService_GeneratesSecret(t *testing.T) {
	cfg := &config.Config{AdminPassword: "pw"}
	svc, err := NewSessionService(cfg, &memPasswords{}, NewInMemoryBlocklist(time.Minute), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, svc.secret, 43)
	assert.Equal(t, defaultSessionTTL, svc.ttl)
}

func TestInMemoryBlocklist(t *testing.T) {
	b := NewInMemoryBlocklist(time.Minute)
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "expired", time.Now().Add(-time.Second)))
	revoked, err := b.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "active", time.Now().Add(time.Hour)))
	revoked, err = b.IsRevoked(ctx, "active")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}
