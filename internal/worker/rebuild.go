// Package worker provides background job processing for RoadWatch.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HotspotRebuilder recomputes hotspot state from the full report history.
type HotspotRebuilder interface {
	RebuildAll(ctx context.Context) error
}

// RebuildConfig holds configuration for the hotspot rebuild job.
type RebuildConfig struct {
	// Interval is how often the scheduled rebuild runs (default: 1 hour).
	Interval time.Duration

	// Timeout bounds a single rebuild run (default: 5 minutes).
	Timeout time.Duration
}

func (c RebuildConfig) withDefaults() RebuildConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	return c
}

// RebuildJobConfig holds configuration for creating a RebuildJob.
type RebuildJobConfig struct {
	// Engine is the hotspot engine to rebuild (required).
	Engine HotspotRebuilder

	// Config tunes scheduling; zero fields take defaults.
	Config RebuildConfig

	// Logger for job operations.
	Logger zerolog.Logger
}

// RebuildJob recomputes hotspot state from scratch. Hotspots are derived
// state, so the rebuild is the repair path for any drift the incremental
// evaluation accumulates.
type RebuildJob struct {
	engine HotspotRebuilder
	config RebuildConfig
	logger zerolog.Logger

	mu      sync.Mutex
	metrics RebuildMetrics
}

// RebuildMetrics tracks rebuild job statistics.
type RebuildMetrics struct {
	Runs        int64
	Failures    int64
	LastRunAt   time.Time
	LastRunErr  string
	LastRunTook time.Duration
}

// RebuildResult contains the outcome of one rebuild run.
type RebuildResult struct {
	StartTime time.Time
	Duration  time.Duration
	Err       error
}

// NewRebuildJob creates a new rebuild job processor.
func NewRebuildJob(cfg RebuildJobConfig) *RebuildJob {
	return &RebuildJob{
		engine: cfg.Engine,
		config: cfg.Config.withDefaults(),
		logger: cfg.Logger,
	}
}

// Run executes a single rebuild, bounded by the configured timeout.
func (j *RebuildJob) Run(ctx context.Context) *RebuildResult {
	start := time.Now()

	j.logger.Info().Msg("starting hotspot rebuild")

	runCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	err := j.engine.RebuildAll(runCtx)
	duration := time.Since(start)

	j.record(start, duration, err)

	if err != nil {
		j.logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("hotspot rebuild failed")
	} else {
		j.logger.Info().
			Dur("duration", duration).
			Msg("hotspot rebuild completed")
	}

	return &RebuildResult{
		StartTime: start,
		Duration:  duration,
		Err:       err,
	}
}

// RunPeriodic runs the rebuild on the configured interval until the context
// is cancelled. The first run happens immediately.
func (j *RebuildJob) RunPeriodic(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("stopping scheduled hotspot rebuild")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

// Metrics returns a snapshot of the job statistics.
func (j *RebuildJob) Metrics() RebuildMetrics {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.metrics
}

func (j *RebuildJob) record(start time.Time, duration time.Duration, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.Runs++
	j.metrics.LastRunAt = start
	j.metrics.LastRunTook = duration
	j.metrics.LastRunErr = ""
	if err != nil {
		j.metrics.Failures++
		j.metrics.LastRunErr = err.Error()
	}
}
