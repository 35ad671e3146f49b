//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"circulation-engine/internal/handler/middleware"
	"circulation-engine/internal/pkg/jwt"
	"circulation-engine/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, svc *jwt.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mw := middleware.NewAuthMiddleware(usecase.NewTokenValidator(svc))
	r.GET("/whoami", mw.RequireAuth(), func(c *gin.Context) {
		patronID, _ := middleware.GetPatronID(c)
		libraryID, _ := middleware.GetLibraryID(c)
		c.JSON(http.StatusOK, gin.H{
			"patron_id":  patronID.String(),
			"library_id": libraryID.String(),
			"pin":        middleware.GetPIN(c),
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour, time.Hour)
	router := newAuthRouter(t, svc)
	patronID, libraryID := uuid.New(), uuid.New()

	access, err := svc.GenerateAccessToken(patronID, libraryID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(patronID, libraryID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		pin        string
		wantStatus int
	}{
		{name: "access token", token: access, pin: "1234", wantStatus: http.StatusOK},
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{name: "refresh token", token: refresh, wantStatus: http.StatusUnauthorized},
		{name: "garbage", token: "abc", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.pin != "" {
				req.Header.Set(middleware.PINHeader, tt.pin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), patronID.String())
				assert.Contains(t, w.Body.String(), `"pin":"1234"`)
			}
		})
	}
}
