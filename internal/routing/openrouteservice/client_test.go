package openrouteservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/roadwatch/internal/routing"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

const directionsBody = `{
	"routes": [
		{
			"summary": {"distance": 4217.3, "duration": 612.8},
			"segments": [{"distance": 4217.3, "duration": 612.8, "summary": "Galle Road"}],
			"geometry": "_p~iF~ps|U_ulLnnqC"
		},
		{
			"summary": {"distance": 5120.0, "duration": 590.1},
			"geometry": "_p~iF~ps|U_mqNvxq` + "`" + `@"
		}
	]
}`

func testRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 6.9271, Lon: 79.8612},
		Destination: geo.Point{Lat: 6.9023, Lon: 79.8607},
	}
}

func TestGetDirections(t *testing.T) {
	var gotPath string
	var gotBody orsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directionsBody))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL, Logger: zerolog.Nop()})

	resp, err := client.GetDirections(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "/v2/directions/driving-car", gotPath)

	// ORS expects [lon, lat] coordinate order.
	require.Len(t, gotBody.Coordinates, 2)
	assert.Equal(t, []float64{79.8612, 6.9271}, gotBody.Coordinates[0])
	require.NotNil(t, gotBody.AlternativeRoutes)
	assert.Equal(t, 3, gotBody.AlternativeRoutes.TargetCount)

	require.Len(t, resp.Routes, 2)
	assert.Equal(t, 4217, resp.Routes[0].DistanceMeters)
	assert.Equal(t, 612, resp.Routes[0].DurationSeconds)
	assert.Equal(t, "Galle Road", resp.Routes[0].Summary)
	assert.NotEmpty(t, resp.Routes[0].Geometry())
	assert.Equal(t, ProviderName, resp.Provider)
}

func TestGetDirectionsNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 2009, "message": "Route could not be found"}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), testRequest())
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestGetDirectionsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 0, "message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: http.DefaultClient, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), testRequest())
	assert.ErrorIs(t, err, routing.ErrRateLimitExceeded)
}

func TestGetDirectionsEmptyRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes": []}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), testRequest())
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestGetDirectionsDefaultProfile(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "k", Logger: zerolog.Nop()})
	assert.Equal(t, ProviderName, client.Name())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
