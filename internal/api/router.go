// Package api provides the HTTP API for RoadWatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/alert"
	"github.com/roadwatch/roadwatch/internal/analytics"
	"github.com/roadwatch/roadwatch/internal/api/handler"
	"github.com/roadwatch/roadwatch/internal/api/middleware"
	"github.com/roadwatch/roadwatch/internal/auth"
	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/internal/navigation"
	"github.com/roadwatch/roadwatch/internal/provider/resilience"
	"github.com/roadwatch/roadwatch/internal/report"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AuthService       *auth.Service
	JWTService        *auth.JWTService
	ReportService     *report.Service
	HotspotEngine     *hotspot.Engine
	AlertService      *alert.Service
	NavigationService *navigation.Service
	AnalyticsService  *analytics.Service

	// DB backs the readiness check; nil skips it.
	DB handler.Pinger

	// Providers backs the ops status endpoint; nil skips it.
	Providers *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadwatch-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // 415 for non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Providers)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	reportHandler := handler.NewReportHandler(cfg.ReportService)
	hotspotHandler := handler.NewHotspotHandler(cfg.HotspotEngine)
	alertHandler := handler.NewAlertHandler(cfg.AlertService)
	navigationHandler := handler.NewNavigationHandler(cfg.NavigationService)
	analyticsHandler := handler.NewAnalyticsHandler(cfg.AnalyticsService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// Liveness probe outside the versioned tree
	r.Get("/healthz", opsHandler.HealthCheck)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Report endpoints (authenticated) - officer-based rate limiting
		r.Route("/reports", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByOfficer(middleware.StandardRateLimit)) // 100 req/min per officer
			r.Post("/", reportHandler.Create)
			r.Get("/", reportHandler.List)
			r.Get("/{reportId}", reportHandler.Get)
		})

		// Hotspot snapshot (public) - standard rate limiting
		r.With(standardRateLimit).Get("/hotspots", hotspotHandler.List)

		// Alert check endpoint (public, drives in-car clients) - standard rate limiting
		r.With(standardRateLimit).Post("/alerts/check", alertHandler.Check)

		// Navigation endpoints (public)
		r.Route("/navigation", func(r chi.Router) {
			r.With(standardRateLimit).Get("/alerts", hotspotHandler.AreaAlerts)
			// Route computation calls the routing provider - strict rate limiting
			r.With(expensiveRateLimit).Post("/route", navigationHandler.Route)
			r.With(standardRateLimit).Post("/feedback", alertHandler.Feedback)
		})

		// Analytics endpoints (authenticated) - officer-based rate limiting
		r.Route("/analytics", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByOfficer(middleware.StandardRateLimit))
			r.Get("/summary", analyticsHandler.Summary)
			r.Get("/trends", analyticsHandler.Trends)
			r.Get("/heatmap", analyticsHandler.Heatmap)
		})
	})

	return r
}
