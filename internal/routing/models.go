// Package routing provides road route computation between two points.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// GetDirections retrieves route directions between two points.
	// Returns multiple route alternatives when available.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// RouteProfile represents a routing profile (mode of transport).
type RouteProfile string

const (
	// ProfileDriving is the standard car profile.
	ProfileDriving RouteProfile = "driving-car"
	// ProfileDrivingHGV is the heavy goods vehicle profile.
	ProfileDrivingHGV RouteProfile = "driving-hgv"
)

// DirectionsRequest is the request for computing routes.
type DirectionsRequest struct {
	Origin      geo.Point
	Destination geo.Point
	Profile     RouteProfile
	// MaxAlternatives is the maximum number of alternative routes to request
	// in addition to the recommended one (default: 2).
	MaxAlternatives int
}

// DirectionsResponse is the response containing route alternatives.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route option.
type Route struct {
	// GeometryPolyline is the route geometry as an encoded polyline
	// (precision 5).
	GeometryPolyline string
	DistanceMeters   int
	DurationSeconds  int
	Summary          string
}

// Geometry decodes the route polyline into coordinates.
func (r Route) Geometry() []geo.Point {
	return geo.DecodePolyline(r.GeometryPolyline)
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
