package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nazarious-ucu/waitlist-api/docs"
	"github.com/Nazarious-ucu/waitlist-api/internal/config"
	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/admin"
	"github.com/Nazarious-ucu/waitlist-api/internal/handlers/subscription"
	"github.com/Nazarious-ucu/waitlist-api/internal/metrics"
	"github.com/Nazarious-ucu/waitlist-api/internal/middleware"
)

type Handlers struct {
	Subscription *subscription.Handler
	Admin        *admin.Handler
}

// NewRouter wires every public and admin route. Unknown routes, including
// known paths with the wrong method or a trailing slash, answer 404 "Not Found".
func NewRouter(cfg *config.Config, h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.TrustedPlatform = gin.PlatformCloudflare
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	cors := middleware.NewCORS(cfg.Site.Origins())
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		m.HTTPMiddleware(),
		cors.Preflight(),
	)

	api := router.Group("/api", cors.Headers())
	{
		api.POST("/subscribe", h.Subscription.Subscribe)
	}

	router.GET("/confirm", h.Subscription.Confirm)

	adminGroup := router.Group("/admin", middleware.AdminAuth(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Realm))
	{
		adminGroup.GET("/export", h.Admin.Export)
		adminGroup.GET("/stats", h.Admin.Stats)
		adminGroup.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.Any("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}
