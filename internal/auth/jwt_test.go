// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

func newTestManager(t *testing.T, accessExpire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  accessExpire,
		RefreshTokenExpire: time.Hour,
		VerifyTokenExpire:  time.Hour,
		Issuer:             "test-issuer",
		Audience:           "test-audience",
	})
	require.NoError(t, err)

	return m
}

func TestIssuePairAndVerify(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := m.IssuePair("acct-1", "user@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int(15*time.Minute/time.Second), pair.ExpiresIn)

	claims, err := m.VerifyAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	accountID, err := m.VerifyRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", accountID)
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := m.IssuePair("acct-1", "user@example.com", "user")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyRefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestExpiredAccessToken(t *testing.T) {
	m := newTestManager(t, -time.Minute)
	ctx := context.Background()

	pair, err := m.IssuePair("acct-1", "user@example.com", "user")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)
	ctx := context.Background()

	_, err := m.VerifyAccessToken(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenFromForeignKeyRejected(t *testing.T) {
	m1 := newTestManager(t, 15*time.Minute)
	m2 := newTestManager(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := m1.IssuePair("acct-1", "user@example.com", "user")
	require.NoError(t, err)

	_, err = m2.VerifyAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestRenewAccessToken(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)
	ctx := context.Background()

	token, expiresAt, err := m.RenewAccessToken("acct-2", "a@b.com", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := m.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}
