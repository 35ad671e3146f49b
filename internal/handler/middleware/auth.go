package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"circulation-engine/internal/pkg/cookie"
	"circulation-engine/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxPatronIDKey  = "patron_id"
	ctxLibraryIDKey = "library_id"
	ctxPINKey       = "patron_pin"

	// PINHeader carries the patron's PIN for vendors that re-authenticate
	// the patron on every call. It is never stored.
	PINHeader = "X-Patron-Pin"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Access token required"},
			})
			c.Abort()
			return
		}

		patronID, libraryID, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}

		c.Set(ctxPatronIDKey, patronID)
		c.Set(ctxLibraryIDKey, libraryID)
		if pin := c.GetHeader(PINHeader); pin != "" {
			c.Set(ctxPINKey, pin)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if token := cookie.GetAccessToken(c); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetPatronID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxPatronIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetLibraryID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxLibraryIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetPIN returns "" when the client sent no PIN.
func GetPIN(c *gin.Context) string {
	return c.GetString(ctxPINKey)
}

// SetPatron is for tests and internal callers that authenticate by other means.
func SetPatron(c *gin.Context, patronID, libraryID uuid.UUID) {
	c.Set(ctxPatronIDKey, patronID)
	c.Set(ctxLibraryIDKey, libraryID)
}
