//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"circulation-engine/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour, 24*time.Hour)
	patronID, libraryID := uuid.New(), uuid.New()

	access, err := svc.GenerateAccessToken(patronID, libraryID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(patronID, libraryID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, patronID, claims.PatronID)
	assert.Equal(t, libraryID, claims.LibraryID)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, jwt.TokenTypeRefresh, claims.TokenType)
}

func TestService_Rejects(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour, time.Hour)

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewService("secret", -time.Minute, time.Hour)
		token, err := expired.GenerateAccessToken(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := jwt.NewService("other", time.Hour, time.Hour)
		token, err := other.GenerateAccessToken(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
