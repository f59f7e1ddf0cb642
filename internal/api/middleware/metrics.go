package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/roadwatch/roadwatch/internal/api/middleware"

// Metrics holds the OpenTelemetry instruments for the HTTP server.
type Metrics struct {
	duration  metric.Float64Histogram
	requests  metric.Int64Counter
	inFlight  metric.Int64UpDownCounter
	respBytes metric.Int64Histogram
}

// NewMetrics registers the HTTP server instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.duration, err = meter.Float64Histogram(
		"roadwatch.http.server.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.requests, err = meter.Int64Counter(
		"roadwatch.http.server.requests",
		metric.WithDescription("Completed HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter(
		"roadwatch.http.server.in_flight",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.respBytes, err = meter.Int64Histogram(
		"roadwatch.http.server.response_size",
		metric.WithDescription("Size of HTTP response bodies"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// Middleware records duration, count, and response size per request,
// labeled with the chi route pattern so /v1/reports/{id} aggregates as
// one series regardless of the concrete report ID.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The route pattern is unknown until the router has matched, so
			// the in-flight gauge is labeled by method only.
			inFlightAttrs := metric.WithAttributes(attribute.String("http.method", r.Method))
			m.inFlight.Add(r.Context(), 1, inFlightAttrs)
			defer m.inFlight.Add(r.Context(), -1, inFlightAttrs)

			sw := wrapWriter(w)
			next.ServeHTTP(sw, r)

			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.String("http.status_code", strconv.Itoa(sw.status)),
			}
			if sw.status >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			opt := metric.WithAttributes(attrs...)
			m.duration.Record(r.Context(), time.Since(start).Seconds(), opt)
			m.requests.Add(r.Context(), 1, opt)
			m.respBytes.Record(r.Context(), sw.bytes, opt)
		})
	}
}

// ProviderMetrics holds instruments for calls to external providers
// (routing and weather APIs), including cache effectiveness.
type ProviderMetrics struct {
	duration    metric.Float64Histogram
	requests    metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// NewProviderMetrics registers the external provider instruments.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)
	m := &ProviderMetrics{}

	var err error
	if m.duration, err = meter.Float64Histogram(
		"roadwatch.provider.duration",
		metric.WithDescription("Duration of external provider calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.requests, err = meter.Int64Counter(
		"roadwatch.provider.requests",
		metric.WithDescription("External provider calls"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.cacheHits, err = meter.Int64Counter(
		"roadwatch.provider.cache.hits",
		metric.WithDescription("Provider responses served from cache"),
		metric.WithUnit("{hit}"),
	); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = meter.Int64Counter(
		"roadwatch.provider.cache.misses",
		metric.WithDescription("Provider cache lookups that missed"),
		metric.WithUnit("{miss}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func providerAttrs(provider, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
}

// RecordRequest records the outcome of one provider call. A background
// context is used so recording survives cancellation of the request that
// triggered the call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := providerAttrs(provider, operation)
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	ctx := context.Background()
	opt := metric.WithAttributes(attrs...)
	m.duration.Record(ctx, duration.Seconds(), opt)
	m.requests.Add(ctx, 1, opt)
}

// RecordCacheHit counts a provider response served from cache.
func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(providerAttrs(provider, operation)...))
}

// RecordCacheMiss counts a provider cache lookup that missed.
func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(providerAttrs(provider, operation)...))
}
