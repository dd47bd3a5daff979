package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/dashboard"
	"resume-builder/internal/editor"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const improveRateLimitGroup = "IMPROVE"

// RouterDeps holds the handlers mounted on the router.
type RouterDeps struct {
	Config           config.Config
	EditorHandler    *editor.Handler
	DashboardHandler *dashboard.Handler
	Health           *health.Service
	Verifier         *auth.Verifier
	// ImproveLimiter overrides the per-user limiter on the improve routes.
	ImproveLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{Verifier: deps.Verifier, AllowGuests: !cfg.DisableGuests}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, cfg.Gateway)
	}
	api.GET("/health", func(c *gin.Context) {
		status, ok := healthSvc.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.JSON(c, http.StatusOK, status)
	})
	var openSessions openSessionsFunc
	if deps.EditorHandler != nil {
		openSessions = func(owner string) int { return len(deps.EditorHandler.Svc.Sessions(owner)) }
	}
	registerMeRoutes(api, openSessions)

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}
	if deps.EditorHandler != nil {
		deps.EditorHandler.RegisterRoutes(api)

		improve := api.Group("", middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: improveRateLimitGroup,
			Limiter:      deps.ImproveLimiter,
			Rules: map[string]middleware.RateLimitRule{
				improveRateLimitGroup: {Rate: improveRate(cfg), Burst: improveBurst(cfg)},
			},
		}))
		deps.EditorHandler.RegisterImproveRoutes(improve)
	}

	return r
}

// improveRate keeps inbound improve requests at the outbound augment rate.
func improveRate(cfg config.Config) float64 {
	if cfg.AugmentRatePerSec > 0 {
		return cfg.AugmentRatePerSec
	}
	return 1
}

func improveBurst(cfg config.Config) int {
	if cfg.AugmentBurst > 0 {
		return cfg.AugmentBurst
	}
	return 3
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
