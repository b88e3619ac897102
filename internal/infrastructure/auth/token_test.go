package auth_test

import (
	"testing"
	"time"

	"github.com/Chrissie21/GrowSafeWebApp/internal/infrastructure/auth"
	"github.com/Chrissie21/GrowSafeWebApp/internal/models"
	pkgerrors "github.com/Chrissie21/GrowSafeWebApp/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, 7*24*time.Hour)
	user := &models.User{ID: 1, Username: "alice", IsStaff: true}

	signed, err := tokens.GenerateAccessToken(user)
	assert.NoError(t, err)

	claims, err := tokens.ParseAccessToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.False(t, claims.IsSuperuser)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, 7*24*time.Hour)

	signed, err := tokens.GenerateRefreshToken(1)
	assert.NoError(t, err)

	claims, err := tokens.ParseRefreshToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, 7*24*time.Hour)
	other := auth.NewTokenService("other-secret", time.Hour, 7*24*time.Hour)

	signed, err := other.GenerateAccessToken(&models.User{ID: 1})
	assert.NoError(t, err)

	claims, err := tokens.ParseAccessToken(signed)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidToken)
}

func TestTokenService_NilUser(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, 7*24*time.Hour)

	signed, err := tokens.GenerateAccessToken(nil)
	assert.Empty(t, signed)
	assert.ErrorIs(t, err, pkgerrors.ErrNilUser)
}
