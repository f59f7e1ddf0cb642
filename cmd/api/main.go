// Package main provides the entrypoint for the RoadWatch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/alert"
	"github.com/roadwatch/roadwatch/internal/analytics"
	"github.com/roadwatch/roadwatch/internal/api"
	"github.com/roadwatch/roadwatch/internal/api/middleware"
	"github.com/roadwatch/roadwatch/internal/auth"
	"github.com/roadwatch/roadwatch/internal/database"
	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/internal/navigation"
	"github.com/roadwatch/roadwatch/internal/provider/resilience"
	"github.com/roadwatch/roadwatch/internal/report"
	"github.com/roadwatch/roadwatch/internal/routing"
	"github.com/roadwatch/roadwatch/internal/routing/openrouteservice"
	"github.com/roadwatch/roadwatch/internal/telemetry"
	"github.com/roadwatch/roadwatch/internal/weather"
	"github.com/roadwatch/roadwatch/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roadwatch-api"

	// Load .env for local development; ignored when absent.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RoadWatch API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.roadwatch.lk",
		Audience:   "roadwatch-api",
	})

	authService := auth.NewService(auth.ServiceConfig{
		Repository: auth.NewPostgresRepository(pool),
		JWT:        jwtService,
		Logger:     log,
	})
	log.Info().Msg("auth service initialized")

	// Provider registry backs the ops status endpoint
	registry := resilience.NewRegistry()

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	// Hotspot engine over the PostGIS store
	reportRepo := report.NewPostgresRepository(pool)
	engine := hotspot.NewEngine(hotspot.EngineConfig{
		Store:   hotspot.NewPostgresStore(pool),
		Reports: reportRepo,
		Logger:  log,
	})

	reportService := report.NewService(report.ServiceConfig{
		Repository: reportRepo,
		Evaluator:  engine,
		Logger:     log,
	})
	log.Info().Msg("report service initialized")

	// Weather provider (optional; alerts degrade without it)
	var weatherService *weather.Service
	if apiKey := os.Getenv("OPENWEATHERMAP_API_KEY"); apiKey != "" {
		owmHTTP := resilience.NewClient(resilience.ClientConfig{Name: "openweathermap"})
		registry.Register("openweathermap", owmHTTP)

		weatherService = weather.NewService(weather.ServiceConfig{
			Provider: openweathermap.NewClient(openweathermap.ClientConfig{
				APIKey:     apiKey,
				HTTPClient: owmHTTP,
				Logger:     log,
			}),
			Logger:  log,
			Metrics: providerMetrics,
		})
		log.Info().Msg("weather service initialized")
	} else {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY not set - alert checks run without weather lookups")
	}

	alertCfg := alert.ServiceConfig{
		Hotspots: engine,
		Logger:   log,
	}
	if weatherService != nil {
		alertCfg.Weather = weatherService
	}
	alertService := alert.NewService(alertCfg)
	log.Info().Msg("alert service initialized")

	// Routing provider (optional; navigation endpoints fail without it)
	var navigationService *navigation.Service
	if apiKey := os.Getenv("OPENROUTESERVICE_API_KEY"); apiKey != "" {
		orsHTTP := resilience.NewClient(resilience.ClientConfig{Name: "openrouteservice"})
		registry.Register("openrouteservice", orsHTTP)

		routingService := routing.NewService(routing.ServiceConfig{
			Provider: openrouteservice.NewClient(openrouteservice.ClientConfig{
				APIKey:     apiKey,
				HTTPClient: orsHTTP,
			}),
			Logger:  log,
			Metrics: providerMetrics,
		})

		navigationService = navigation.NewService(navigation.ServiceConfig{
			Routes:   routingService,
			Hotspots: engine,
			Logger:   log,
		})
		log.Info().Msg("navigation service initialized")
	} else {
		log.Warn().Msg("OPENROUTESERVICE_API_KEY not set - safe-route endpoint unavailable")
	}

	analyticsService := analytics.NewService(analytics.ServiceConfig{
		Reports: reportRepo,
		Logger:  log,
	})
	log.Info().Msg("analytics service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		AuthService:       authService,
		JWTService:        jwtService,
		ReportService:     reportService,
		HotspotEngine:     engine,
		AlertService:      alertService,
		NavigationService: navigationService,
		AnalyticsService:  analyticsService,
		DB:                pool,
		Providers:         registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	// Let in-flight hotspot evaluations finish before the pool closes.
	reportService.Wait()

	log.Info().Msg("server stopped")
}
