package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/config"
	"github.com/khabaroff/metrology-license-registry/src/handlers"
	"github.com/khabaroff/metrology-license-registry/src/middleware"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
	"github.com/khabaroff/metrology-license-registry/src/services"
	"github.com/khabaroff/metrology-license-registry/src/templates"
)

// Dependencies are the storage-facing collaborators of the HTTP layer
type Dependencies struct {
	Health   handlers.HealthChecker
	Admins   repositories.AdminRepository
	Licenses repositories.LicenseRepository

	// Site defaults to the embedded site.yaml
	Site *templates.SiteConfig
}

// Server is the assembled HTTP application
type Server struct {
	Router   *gin.Engine
	Sessions *middleware.SessionManager
	Admins   *services.AdminService

	limiters []*middleware.IPRateLimiter
}

// New builds the router with every route and middleware registered
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	site := deps.Site
	if site == nil {
		loaded, err := templates.LoadSiteConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load site config: %w", err)
		}
		site = loaded
	}

	pages, err := templates.LoadPages()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	adminService := services.NewAdminService(deps.Admins)
	sessions := middleware.NewSessionManager(middleware.SessionConfig{
		Secret:      cfg.SecretKey,
		Lifetime:    cfg.SessionLifetime,
		Secure:      cfg.IsProduction(),
		AdminExists: adminService.AdminExists,
	})
	renderer := handlers.NewRenderer(site, sessions)

	healthHandler := handlers.NewHealthHandler(deps.Health)
	scanHandler := handlers.NewScanHandler(services.NewLookupService(deps.Licenses), renderer)
	authHandler := handlers.NewAuthHandler(adminService, sessions, renderer)
	licenseHandler := handlers.NewLicenseHandler(services.NewLicenseService(deps.Licenses), sessions, renderer)

	validateLimiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.ValidateRateLimit,
	})
	loginLimiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.LoginRateLimit,
		OnLimit:           renderer.LoginRateLimited,
	})

	router := gin.New()
	router.SetHTMLTemplate(pages)

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.BodyLimitMiddleware(cfg.MaxContentLength))
	router.Use(sessions.LoadSession())

	// Public pages
	router.GET("/", scanHandler.HandleIndex)
	router.GET("/scan", scanHandler.HandleScan)

	// Health check endpoints
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/ready", healthHandler.HandleReady)
	router.GET("/info", healthHandler.HandleInfo)

	// Public lookup API
	api := router.Group("/api")
	if len(cfg.AllowedOrigins) > 0 {
		api.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	}
	api.POST("/validate", validateLimiter.Middleware(), scanHandler.HandleValidate)
	// Preflight requests are answered by the CORS middleware
	api.OPTIONS("/validate", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Admin authentication
	router.GET("/login", authHandler.HandleLoginPage)
	router.POST("/login", loginLimiter.Middleware(), authHandler.HandleLogin)
	router.GET("/logout", authHandler.HandleLogout)

	// Admin pages (all require a session)
	admin := router.Group("/admin", sessions.RequireSession())
	{
		admin.GET("/dashboard", licenseHandler.HandleDashboard)
		admin.GET("/licenses/add", licenseHandler.HandleAddPage)
		admin.POST("/licenses/add", licenseHandler.HandleAdd)
		admin.GET("/licenses/edit/:id", licenseHandler.HandleEditPage)
		admin.POST("/licenses/edit/:id", licenseHandler.HandleEdit)
		admin.POST("/licenses/delete/:id", licenseHandler.HandleDelete)
		admin.POST("/api/check-duplicate", licenseHandler.HandleCheckDuplicate)
	}

	router.NoRoute(renderer.NotFound)

	return &Server{
		Router:   router,
		Sessions: sessions,
		Admins:   adminService,
		limiters: []*middleware.IPRateLimiter{validateLimiter, loginLimiter},
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.Router
}

// Close stops the rate limiter cleanup goroutines
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Stop()
	}
}

// corsConfig allows the listed origins to call the lookup API; "*" allows any
func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}

	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowed["*"] || allowed[origin]
		},
		AllowMethods:  []string{"POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}
