package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Evaluator re-evaluates hotspot state after a report is persisted.
// Implemented by the hotspot engine.
type Evaluator interface {
	Evaluate(ctx context.Context, r *Report) error
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	// Repository is the report store (required).
	Repository Repository

	// Evaluator receives each persisted report for hotspot re-evaluation.
	// Optional; submissions succeed without it.
	Evaluator Evaluator

	// Logger for service operations.
	Logger zerolog.Logger

	// EvaluateTimeout bounds the post-commit hotspot evaluation
	// (default: 5 seconds).
	EvaluateTimeout time.Duration
}

// Service coordinates report submission. The durable write is the primary
// operation; hotspot re-evaluation runs afterwards on a best-effort basis and
// never affects the submission result.
type Service struct {
	repo            Repository
	evaluator       Evaluator
	logger          zerolog.Logger
	evaluateTimeout time.Duration

	// wg tracks in-flight evaluations so tests and shutdown can drain them.
	wg sync.WaitGroup
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.EvaluateTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Service{
		repo:            cfg.Repository,
		evaluator:       cfg.Evaluator,
		logger:          cfg.Logger,
		evaluateTimeout: timeout,
	}
}

// Submit validates and persists a new accident report, then dispatches hotspot
// re-evaluation in the background. A store failure is returned to the caller;
// an evaluation failure is logged only.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rep := &Report{
		ID:               uuid.New(),
		ReportID:         fmt.Sprintf("ACC-%d", now.UnixMilli()),
		OfficerID:        in.OfficerID,
		Location:         in.Location,
		OccurredAt:       in.OccurredAt.UTC(),
		Severity:         in.Severity,
		WeatherCondition: in.WeatherCondition,
		VehicleCount:     in.VehicleCount,
		Description:      in.Description,
		CreatedAt:        now,
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", rep.ReportID).
		Str("severity", string(rep.Severity)).
		Bool("geotagged", rep.Location != nil).
		Msg("accident report recorded")

	s.dispatchEvaluation(rep)

	return rep, nil
}

// dispatchEvaluation runs hotspot re-evaluation detached from the request,
// with its own timeout. The write already committed; failures here degrade
// hotspot freshness, nothing more.
func (s *Service) dispatchEvaluation(rep *Report) {
	if s.evaluator == nil || rep.Location == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.evaluateTimeout)
		defer cancel()

		if err := s.evaluator.Evaluate(ctx, rep); err != nil {
			s.logger.Warn().
				Err(err).
				Str("report_id", rep.ReportID).
				Msg("hotspot re-evaluation failed, report remains recorded")
		}
	}()
}

// Wait blocks until all in-flight evaluations finish. Used on shutdown and in
// tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Get retrieves a report by its external identifier.
func (s *Service) Get(ctx context.Context, reportID string) (*Report, error) {
	return s.repo.GetByReportID(ctx, reportID)
}

// List retrieves the most recent reports, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Report, error) {
	return s.repo.List(ctx, limit)
}
