//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"circulation-engine/internal/handler/dto/request"
	"circulation-engine/internal/pkg/cookie"
	"circulation-engine/tests/common/dbtest"
	"circulation-engine/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func LoginPatron(t *testing.T, router *gin.Engine, barcode, pin string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Barcode: barcode, PIN: pin}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Extract access token from cookie
	accessCookie := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
	require.NotNil(t, accessCookie, "Access token not found in cookies")
	require.NotEmpty(t, accessCookie.Value, "Access token cookie is empty")

	return accessCookie.Value
}

// CreateAndLogin registers a patron at libraryID and signs them in with
// the seeded PIN.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, router *gin.Engine, libraryID uuid.UUID, barcode string) (uuid.UUID, string) {
	t.Helper()
	patronID := dbtest.CreateTestPatron(t, db, libraryID, barcode)
	return patronID, LoginPatron(t, router, barcode, dbtest.SeedPIN)
}

func LogoutPatron(t *testing.T, router *gin.Engine, cookies []*http.Cookie) {
	t.Helper()

	w := httptest.PerformRequestWithCookies(t, router, http.MethodPost, "/api/auth/logout", nil, cookies, "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}
