package middleware

import (
	"log/slog"
	"slices"

	"circulation-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowHeaders := cfg.AllowHeaders
	// Browsers must be able to send the vendor PIN even when the header list
	// is overridden.
	if !slices.Contains(allowHeaders, PINHeader) {
		allowHeaders = append(slices.Clone(allowHeaders), PINHeader)
	}

	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized", "AllowOrigins", cfg.AllowOrigins, "AllowHeaders", allowHeaders)
	return cors.New(corsCfg)
}
