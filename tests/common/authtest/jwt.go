//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) service(t *testing.T, access time.Duration) *jwt.Service {
	t.Helper()
	refreshDuration, err := time.ParseDuration(h.cfg.RefreshTokenDuration)
	require.NoError(t, err)
	return jwt.NewService(h.cfg.Secret, access, refreshDuration)
}

func (h *JWTHelper) GenerateToken(t *testing.T, patronID, libraryID uuid.UUID) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.AccessTokenDuration)
	require.NoError(t, err)
	token, err := h.service(t, duration).GenerateAccessToken(patronID, libraryID)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) GenerateRefreshToken(t *testing.T, patronID, libraryID uuid.UUID) string {
	t.Helper()
	token, err := h.service(t, time.Hour).GenerateRefreshToken(patronID, libraryID)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, patronID, libraryID uuid.UUID) string {
	t.Helper()
	token, err := h.service(t, time.Millisecond).GenerateAccessToken(patronID, libraryID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
