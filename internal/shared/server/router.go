package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediavault-backend/internal/files"
	"mediavault-backend/internal/shared/config"
	"mediavault-backend/internal/shared/metrics"
	"mediavault-backend/internal/shared/server/middleware"
	"mediavault-backend/internal/shared/server/respond"
	"mediavault-backend/internal/shares"
	"mediavault-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config       config.Config
	FilesHandler *files.Handler
	ShareHandler *shares.Handler
	UsersHandler *users.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.FilesHandler != nil {
		deps.FilesHandler.RegisterRoutes(api)
	}
	if deps.ShareHandler != nil {
		deps.ShareHandler.RegisterRoutes(api)
		// Anonymous share traffic is throttled per client IP.
		public := api.Group("/public", middleware.RateLimit(middleware.NewRateLimiter(nil), middleware.RateLimitRule{
			Rate:  5,
			Burst: 20,
		}))
		deps.ShareHandler.RegisterPublicRoutes(public)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
