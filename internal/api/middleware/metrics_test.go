package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/roadwatch/roadwatch/internal/api/middleware"
)

// setupTestMeter installs a manual-reader meter provider so tests can
// inspect what the middleware recorded.
func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader
}

// collectMetric returns the named metric from the reader, failing the
// test when it was never recorded.
func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %q was not recorded", name)
	return metricdata.Metrics{}
}

func TestNewMetrics(t *testing.T) {
	setupTestMeter(t)

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_Middleware_RecordsRequestWithRoutePattern(t *testing.T) {
	reader := setupTestMeter(t)

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/v1/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"severity":"dangerous"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/5f0c9a2e", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	m := collectMetric(t, reader, "roadwatch.http.server.requests")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	dp := sum.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)

	route, ok := dp.Attributes.Value(attribute.Key("http.route"))
	require.True(t, ok)
	// Aggregated under the pattern, not one series per report ID
	assert.Equal(t, "/v1/reports/{id}", route.AsString())

	status, ok := dp.Attributes.Value(attribute.Key("http.status_code"))
	require.True(t, ok)
	assert.Equal(t, "200", status.AsString())
}

func TestMetrics_Middleware_TagsErrorResponses(t *testing.T) {
	reader := setupTestMeter(t)

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"location requires both lat and lon"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	m := collectMetric(t, reader, "roadwatch.http.server.requests")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	errAttr, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("error"))
	require.True(t, ok)
	assert.True(t, errAttr.AsBool())
}

func TestMetrics_Middleware_DefaultStatusCode(t *testing.T) {
	reader := setupTestMeter(t)

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler never calls WriteHeader
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	m := collectMetric(t, reader, "roadwatch.http.server.requests")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	status, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("http.status_code"))
	require.True(t, ok)
	assert.Equal(t, "200", status.AsString())
}

func TestNewProviderMetrics(t *testing.T) {
	setupTestMeter(t)

	pm, err := middleware.NewProviderMetrics()
	require.NoError(t, err)
	assert.NotNil(t, pm)
}

func TestProviderMetrics_RecordRequest(t *testing.T) {
	reader := setupTestMeter(t)

	pm, err := middleware.NewProviderMetrics()
	require.NoError(t, err)

	pm.RecordRequest("openrouteservice", "directions", 120*time.Millisecond, nil)

	m := collectMetric(t, reader, "roadwatch.provider.requests")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	name, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("provider.name"))
	require.True(t, ok)
	assert.Equal(t, "openrouteservice", name.AsString())
}

func TestProviderMetrics_CacheOutcomes(t *testing.T) {
	reader := setupTestMeter(t)

	pm, err := middleware.NewProviderMetrics()
	require.NoError(t, err)

	pm.RecordCacheHit("openmeteo", "current_conditions")
	pm.RecordCacheHit("openmeteo", "current_conditions")
	pm.RecordCacheMiss("openmeteo", "current_conditions")

	hits := collectMetric(t, reader, "roadwatch.provider.cache.hits")
	hitSum, ok := hits.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, hitSum.DataPoints, 1)
	assert.Equal(t, int64(2), hitSum.DataPoints[0].Value)
}
