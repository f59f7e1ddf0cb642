package worker_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/roadwatch/internal/worker"
)

type stubRebuilder struct {
	calls atomic.Int64
	err   error
}

func (s *stubRebuilder) RebuildAll(_ context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestRebuildJob_Run(t *testing.T) {
	rebuilder := &stubRebuilder{}
	job := worker.NewRebuildJob(worker.RebuildJobConfig{
		Engine: rebuilder,
		Logger: zerolog.New(io.Discard),
	})

	result := job.Run(context.Background())

	require.NoError(t, result.Err)
	assert.Equal(t, int64(1), rebuilder.calls.Load())

	metrics := job.Metrics()
	assert.Equal(t, int64(1), metrics.Runs)
	assert.Equal(t, int64(0), metrics.Failures)
	assert.Empty(t, metrics.LastRunErr)
	assert.False(t, metrics.LastRunAt.IsZero())
}

func TestRebuildJob_Run_Failure(t *testing.T) {
	rebuilder := &stubRebuilder{err: errors.New("store unavailable")}
	job := worker.NewRebuildJob(worker.RebuildJobConfig{
		Engine: rebuilder,
		Logger: zerolog.New(io.Discard),
	})

	result := job.Run(context.Background())

	require.Error(t, result.Err)

	metrics := job.Metrics()
	assert.Equal(t, int64(1), metrics.Runs)
	assert.Equal(t, int64(1), metrics.Failures)
	assert.Contains(t, metrics.LastRunErr, "store unavailable")
}

func TestRebuildJob_RunPeriodic(t *testing.T) {
	rebuilder := &stubRebuilder{}
	job := worker.NewRebuildJob(worker.RebuildJobConfig{
		Engine: rebuilder,
		Config: worker.RebuildConfig{Interval: 10 * time.Millisecond},
		Logger: zerolog.New(io.Discard),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	job.RunPeriodic(ctx)

	// One immediate run plus at least one ticker run.
	assert.GreaterOrEqual(t, rebuilder.calls.Load(), int64(2))
}

func TestRebuildJob_RunPeriodic_StopsOnCancel(t *testing.T) {
	rebuilder := &stubRebuilder{}
	job := worker.NewRebuildJob(worker.RebuildJobConfig{
		Engine: rebuilder,
		Config: worker.RebuildConfig{Interval: time.Hour},
		Logger: zerolog.New(io.Discard),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		job.RunPeriodic(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop after context cancellation")
	}

	// The immediate run still happened before the cancel check.
	assert.Equal(t, int64(1), rebuilder.calls.Load())
}
