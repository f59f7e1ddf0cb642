package routing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/roadwatch/internal/routing"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

type mockProvider struct {
	mu        sync.Mutex
	callCount int
	resp      *routing.DirectionsResponse
	err       error
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) GetDirections(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &routing.DirectionsResponse{
		Routes: []routing.Route{
			{GeometryPolyline: "_p~iF~ps|U_ulLnnqC", DistanceMeters: 4200, DurationSeconds: 600},
		},
		Provider:  "mock",
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *mockProvider) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func newService(p routing.Provider, cfg routing.ServiceConfig) *routing.Service {
	cfg.Provider = p
	cfg.Logger = zerolog.Nop()
	return routing.NewService(cfg)
}

func request() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 6.9271, Lon: 79.8612},
		Destination: geo.Point{Lat: 6.9023, Lon: 79.8607},
	}
}

func TestGetDirections(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, routing.ServiceConfig{})

	resp, err := svc.GetDirections(context.Background(), request())
	require.NoError(t, err)

	require.Len(t, resp.Routes, 1)
	assert.Equal(t, 4200, resp.Routes[0].DistanceMeters)
	assert.NotEmpty(t, resp.Routes[0].Geometry())
}

func TestGetDirectionsCached(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, routing.ServiceConfig{})

	_, err := svc.GetDirections(context.Background(), request())
	require.NoError(t, err)
	_, err = svc.GetDirections(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls())
}

func TestGetDirectionsProfileSeparatesCache(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, routing.ServiceConfig{})

	req := request()
	_, err := svc.GetDirections(context.Background(), req)
	require.NoError(t, err)

	req.Profile = routing.ProfileDrivingHGV
	_, err = svc.GetDirections(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls())
}

func TestGetDirectionsStaleOnError(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider, routing.ServiceConfig{
		CacheTTL:        time.Nanosecond,
		StaleIfErrorTTL: time.Hour,
	})

	first, err := svc.GetDirections(context.Background(), request())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	provider.setErr(routing.ErrProviderUnavailable)

	stale, err := svc.GetDirections(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, first, stale)
}

func TestGetDirectionsProviderError(t *testing.T) {
	provider := &mockProvider{err: routing.ErrNoRouteFound}
	svc := newService(provider, routing.ServiceConfig{})

	_, err := svc.GetDirections(context.Background(), request())
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestGetDirectionsInvalidOrigin(t *testing.T) {
	svc := newService(&mockProvider{}, routing.ServiceConfig{})

	req := request()
	req.Origin.Lat = 91

	_, err := svc.GetDirections(context.Background(), req)
	require.Error(t, err)

	var routingErr *routing.Error
	require.ErrorAs(t, err, &routingErr)
	assert.Equal(t, "INVALID_ORIGIN", routingErr.Code)
	assert.ErrorIs(t, err, geo.ErrInvalidLocation)
}

func TestErrorIsRetryable(t *testing.T) {
	retryable := &routing.Error{Err: routing.ErrRateLimitExceeded, Message: "quota"}
	assert.True(t, retryable.IsRetryable())

	permanent := &routing.Error{Err: routing.ErrNoRouteFound, Message: "no route"}
	assert.False(t, permanent.IsRetryable())
}

func TestErrorUnwrap(t *testing.T) {
	err := &routing.Error{Err: routing.ErrProviderUnavailable, Message: "down"}
	assert.True(t, errors.Is(err, routing.ErrProviderUnavailable))
	assert.Equal(t, "down: routing provider unavailable", err.Error())
}
