package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// CurrentConditions fetches current weather for a location.
	CurrentConditions(ctx context.Context, p geo.Point) (*Observation, error)

	// Name returns the provider name for logging.
	Name() string
}

// MetricsRecorder records provider call and cache outcomes.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records cache and provider call outcomes (optional).
	Metrics MetricsRecorder

	// CacheTTL is how long to cache observations (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the cache grid cell size in degrees (default: 0.1).
	// Points within the same cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors
	// (default: 1 hour).
	StaleIfErrorTTL time.Duration
}

// Service provides weather observations with caching. Alert checks hit this on
// every request, so nearby positions share grid-cell cache entries to keep
// provider traffic bounded.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	metrics         MetricsRecorder
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedObservation
}

type cachedObservation struct {
	observation *Observation
	fetchedAt   time.Time
	expiresAt   time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.1 // ~11km at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 1 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedObservation),
	}
}

// CurrentConditions returns current weather for a location, served from cache
// when fresh.
func (s *Service) CurrentConditions(ctx context.Context, p geo.Point) (*Observation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	key := s.cacheKey(p)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.provider.Name(), "current_conditions")
		}
		return cached.observation, nil
	}
	s.mu.RUnlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), "current_conditions")
	}

	return s.fetch(ctx, p, key)
}

// fetch fetches from the provider and updates the cache. On provider failure
// a stale entry within StaleIfErrorTTL is served instead of the error.
func (s *Service) fetch(ctx context.Context, p geo.Point, key string) (*Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		return cached.observation, nil
	}

	s.logger.Debug().
		Float64("lat", p.Lat).
		Float64("lon", p.Lon).
		Str("provider", s.provider.Name()).
		Msg("fetching weather from provider")

	start := time.Now()
	obs, err := s.provider.CurrentConditions(ctx, p)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), "current_conditions", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Msg("failed to fetch weather")

		if cached, ok := s.cache[key]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale weather data due to provider error")
				return cached.observation, nil
			}
			delete(s.cache, key)
		}

		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	now := time.Now()
	s.cache[key] = &cachedObservation{
		observation: obs,
		fetchedAt:   now,
		expiresAt:   now.Add(s.cacheTTL),
	}

	return obs, nil
}

// cacheKey groups nearby points into grid cells to reduce provider calls.
func (s *Service) cacheKey(p geo.Point) string {
	gridLat := math.Floor(p.Lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(p.Lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f:%.2f", gridLat, gridLon)
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedObservation)
}
