package handler

import (
	"context"
	"net/http"
	"time"

	"circulation-engine/internal/handler/api"
	"circulation-engine/internal/handler/middleware"
	"circulation-engine/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(engine *gin.Engine, cfg config.Config, pool *pgxpool.Pool, authHandler *api.AuthHandler, circulationHandler *api.CirculationHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, pool, authHandler, circulationHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, db pinger, authHandler *api.AuthHandler, circulationHandler *api.CirculationHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck(db))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: authHandler.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		pools := apiGroup.Group("/pools/:id")
		pools.Use(authMiddleware.RequireAuth())
		{
			addRoutes(pools, []route{
				{Method: http.MethodPost, Path: "/borrow", Handler: circulationHandler.Borrow},
				{Method: http.MethodPost, Path: "/fulfill", Handler: circulationHandler.Fulfill},
				{Method: http.MethodDelete, Path: "/loan", Handler: circulationHandler.ReturnLoan},
				{Method: http.MethodDelete, Path: "/hold", Handler: circulationHandler.ReleaseHold},
				{Method: http.MethodGet, Path: "/hold/revocable", Handler: circulationHandler.CanRevokeHold},
				{Method: http.MethodGet, Path: "/can-fulfill-without-loan", Handler: circulationHandler.CanFulfillWithoutLoan},
			})
		}

		bookshelf := apiGroup.Group("/bookshelf")
		bookshelf.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookshelf, []route{
				{Method: http.MethodGet, Path: "", Handler: circulationHandler.Bookshelf},
			})
		}
	}
}

// @Summary Health check
// @Description Reports whether the service can reach its database
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheck(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		g.Handle(r.Method, r.Path, r.Handler)
	}
}
