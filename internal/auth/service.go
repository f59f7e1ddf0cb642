package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrValidation indicates the registration or login input was malformed.
var ErrValidation = errors.New("validation failed")

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	// Repository is the officer store (required).
	Repository Repository

	// JWT issues and validates access tokens (required).
	JWT *JWTService

	// Logger for service operations.
	Logger zerolog.Logger

	// BcryptCost overrides the bcrypt work factor, for tests.
	BcryptCost int
}

// Service handles officer registration and login.
type Service struct {
	repo       Repository
	jwt        *JWTService
	logger     zerolog.Logger
	bcryptCost int
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       cfg.Repository,
		jwt:        cfg.JWT,
		logger:     cfg.Logger,
		bcryptCost: cost,
	}
}

// Register creates an officer account and returns an authenticated session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.BadgeNumber = strings.TrimSpace(in.BadgeNumber)
	in.Name = strings.TrimSpace(in.Name)

	if in.BadgeNumber == "" {
		return nil, fmt.Errorf("%w: badge number is required", ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if in.Role == "" {
		in.Role = RoleOfficer
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	officer := &Officer{
		ID:           uuid.New(),
		BadgeNumber:  in.BadgeNumber,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
		Station:      strings.TrimSpace(in.Station),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, officer); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("officer_id", officer.ID.String()).
		Str("badge_number", officer.BadgeNumber).
		Str("role", string(officer.Role)).
		Msg("officer registered")

	return s.session(officer)
}

// Login authenticates an officer by badge number and password. A wrong badge
// number and a wrong password return the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	officer, err := s.repo.GetByBadge(ctx, strings.TrimSpace(in.BadgeNumber))
	if err != nil {
		if errors.Is(err, ErrOfficerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(officer.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Str("officer_id", officer.ID.String()).
		Msg("officer logged in")

	return s.session(officer)
}

// GetOfficer retrieves an officer by ID.
func (s *Service) GetOfficer(ctx context.Context, id uuid.UUID) (*Officer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) session(o *Officer) (*Session, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(o)
	if err != nil {
		return nil, err
	}
	return &Session{
		Officer:     o,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
