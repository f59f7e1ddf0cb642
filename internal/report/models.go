// Package report provides accident report ingestion and retrieval.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Repository and validation errors.
var (
	// ErrReportNotFound indicates the requested report does not exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrValidation indicates a malformed report submission.
	ErrValidation = errors.New("invalid report")
	// ErrStoreUnavailable indicates the backing store rejected or failed the
	// operation; the write must not be treated as durable.
	ErrStoreUnavailable = errors.New("report store unavailable")
)

// Severity classifies how serious an accident was.
type Severity string

const (
	SeverityMinor     Severity = "minor"
	SeverityMajor     Severity = "major"
	SeverityDangerous Severity = "dangerous"
)

// Severities lists all valid severities in ascending order of seriousness.
func Severities() []Severity {
	return []Severity{SeverityMinor, SeverityMajor, SeverityDangerous}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityDangerous:
		return true
	}
	return false
}

// Report is a single accident report. Reports are immutable once created.
type Report struct {
	// ID is the internal identity assigned at creation.
	ID uuid.UUID

	// ReportID is the externally visible identifier, in the form
	// ACC-<unix millis>.
	ReportID string

	// OfficerID references the authenticated officer who filed the report.
	// Opaque to this package.
	OfficerID uuid.UUID

	// Location is nil when the report carries no coordinates. Latitude and
	// longitude are always set together.
	Location *geo.Point

	// OccurredAt is when the accident happened, in UTC.
	OccurredAt time.Time

	Severity         Severity
	WeatherCondition string
	VehicleCount     int
	Description      string

	CreatedAt time.Time
}

// SubmitInput is the payload for filing a new report.
type SubmitInput struct {
	OfficerID        uuid.UUID
	Location         *geo.Point
	OccurredAt       time.Time
	Severity         Severity
	WeatherCondition string
	VehicleCount     int
	Description      string
}

// Validate rejects malformed submissions before any store mutation.
func (in SubmitInput) Validate() error {
	if !in.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrValidation, in.Severity)
	}
	if in.VehicleCount < 0 {
		return fmt.Errorf("%w: vehicle count must not be negative", ErrValidation)
	}
	if in.OccurredAt.IsZero() {
		return fmt.Errorf("%w: accident time is required", ErrValidation)
	}
	if in.OfficerID == uuid.Nil {
		return fmt.Errorf("%w: officer identity is required", ErrValidation)
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}
