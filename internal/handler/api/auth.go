package api

import (
	"net/http"

	reqdto "circulation-engine/internal/handler/dto/request"
	resdto "circulation-engine/internal/handler/dto/response"
	"circulation-engine/internal/handler/httperr"
	"circulation-engine/internal/handler/middleware"
	"circulation-engine/internal/pkg/config"
	"circulation-engine/internal/pkg/cookie"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/pkg/jwt"
	"circulation-engine/internal/usecase"

	"github.com/gin-gonic/gin"
)

var errUnauthenticated = errs.New("patron not authenticated")

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	jwtService  *jwt.Service
	cookieCfg   config.CookieConfig
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, jwtService *jwt.Service, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		jwtService:  jwtService,
		cookieCfg:   cfg.Cookie,
	}
}

// @Summary Patron login
// @Description Sign in with library card barcode and PIN
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	tokens, profile, err := h.authUseCase.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		switch {
		case errs.Is(err, usecase.ErrInvalidCredentials), errs.Is(err, usecase.ErrPatronNotFound):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid barcode or PIN", nil)
		default:
			httperr.Internal(c, err)
		}
		return
	}

	cookie.SetTokenCookies(c, h.cookieCfg, tokens.AccessToken, tokens.RefreshToken,
		h.jwtService.AccessTokenDuration(), h.jwtService.RefreshTokenDuration())
	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: tokens.AccessToken,
		Patron:      profile,
	})
}

// @Summary Refresh access token
// @Description Exchange a refresh token (cookie or body) for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RefreshRequest false "Refresh request"
// @Success 200 {object} resdto.RefreshResponse
// @Failure 401 {object} httperr.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := cookie.GetRefreshToken(c)
	if token == "" {
		var req reqdto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Refresh token required", nil)
		return
	}

	tokens, err := h.authUseCase.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errs.Is(err, usecase.ErrTokenValidation), errs.Is(err, usecase.ErrPatronNotFound):
			cookie.ClearTokenCookies(c, h.cookieCfg)
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid refresh token", nil)
		default:
			httperr.Internal(c, err)
		}
		return
	}

	cookie.SetTokenCookies(c, h.cookieCfg, tokens.AccessToken, tokens.RefreshToken,
		h.jwtService.AccessTokenDuration(), h.jwtService.RefreshTokenDuration())
	c.JSON(http.StatusOK, resdto.RefreshResponse{AccessToken: tokens.AccessToken})
}

// @Summary Patron logout
// @Description Clear the session cookies
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} httperr.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Tokens are stateless; dropping the cookies is all the server can do.
	cookie.ClearTokenCookies(c, h.cookieCfg)
	c.Status(http.StatusNoContent)
}

// @Summary Current patron
// @Description Get the signed-in patron's account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} usecase.PatronProfile
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	patronID, ok := middleware.GetPatronID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Patron not authenticated", nil)
		return
	}

	profile, err := h.authUseCase.GetCurrentPatron(c.Request.Context(), patronID)
	if err != nil {
		switch {
		case errs.Is(err, usecase.ErrPatronNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Patron not found", nil)
		default:
			httperr.Internal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}
