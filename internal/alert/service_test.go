package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/internal/weather"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

type stubHotspots struct {
	store *hotspot.MemoryStore
}

func (s *stubHotspots) WithinRadius(ctx context.Context, p geo.Point, radiusKM float64) ([]hotspot.WithDistance, error) {
	return s.store.WithinRadius(ctx, p, radiusKM)
}

func (s *stubHotspots) Nearest(ctx context.Context, p geo.Point) (*hotspot.WithDistance, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var best *hotspot.WithDistance
	for _, h := range all {
		d := geo.Distance(p, h.Center)
		if best == nil || d < best.DistanceKM {
			best = &hotspot.WithDistance{Hotspot: h, DistanceKM: d}
		}
	}
	return best, nil
}

type stubWeather struct {
	obs *weather.Observation
	err error

	calls int
}

func (s *stubWeather) CurrentConditions(_ context.Context, _ geo.Point) (*weather.Observation, error) {
	s.calls++
	return s.obs, s.err
}

func seedHotspot(t *testing.T, store *hotspot.MemoryStore, center geo.Point, level hotspot.RiskLevel) uuid.UUID {
	t.Helper()

	res, err := store.AttributeReport(context.Background(), hotspot.Member{
		ReportID: uuid.NewString(),
		Point:    center,
		Severity: "dangerous",
	}, 0.5)
	require.NoError(t, err)

	h, err := store.Get(context.Background(), res.HotspotID)
	require.NoError(t, err)
	h.RiskLevel = level
	require.NoError(t, store.UpdateDerived(context.Background(), h))

	return res.HotspotID
}

func newTestService(store *hotspot.MemoryStore, w WeatherSource, cfg Config) *Service {
	return NewService(ServiceConfig{
		Hotspots: &stubHotspots{store: store},
		Weather:  w,
		Config:   cfg,
		Logger:   zerolog.Nop(),
	})
}

func TestCheckHighRiskWithinBaseRadius(t *testing.T) {
	store := hotspot.NewMemoryStore()
	id := seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskHigh)
	svc := newTestService(store, nil, Config{})

	// About 0.5 km north of the hotspot center.
	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9045, Lon: 79.8500}, "")
	require.NoError(t, err)

	assert.True(t, v.InRiskZone)
	require.NotNil(t, v.NearestHotspotID)
	assert.Equal(t, id, *v.NearestHotspotID)
	assert.Equal(t, hotspot.RiskHigh, v.RiskLevel)
	assert.InDelta(t, 0.5, v.DistanceKM, 0.05)
}

func TestCheckOutsideRadiusPasses(t *testing.T) {
	store := hotspot.NewMemoryStore()
	id := seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskHigh)
	svc := newTestService(store, nil, Config{})

	// About 2.2 km away, well outside the 1 km alert radius.
	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9200, Lon: 79.8500}, "")
	require.NoError(t, err)

	assert.False(t, v.InRiskZone)
	assert.Empty(t, v.Nearby)

	// The nearest hotspot is still reported for proximity display.
	require.NotNil(t, v.NearestHotspotID)
	assert.Equal(t, id, *v.NearestHotspotID)
	assert.InDelta(t, 2.2, v.DistanceKM, 0.1)
}

func TestCheckMediumRiskNeedsScaledRadius(t *testing.T) {
	store := hotspot.NewMemoryStore()
	seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskMedium)
	svc := newTestService(store, nil, Config{})

	// About 1.3 km away: outside the base radius in clear weather.
	pos := geo.Point{Lat: 6.9120, Lon: 79.8500}

	clear, err := svc.Check(context.Background(), pos, "clear sky")
	require.NoError(t, err)
	assert.False(t, clear.InRiskZone)

	// Rain scales the medium-risk radius to 1.5 km.
	rain, err := svc.Check(context.Background(), pos, "light rain")
	require.NoError(t, err)
	assert.True(t, rain.InRiskZone)
	assert.Equal(t, hotspot.RiskMedium, rain.RiskLevel)
	assert.Equal(t, "light rain", rain.WeatherCondition)
}

func TestCheckHighRiskIgnoresWeatherScaling(t *testing.T) {
	store := hotspot.NewMemoryStore()
	seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskHigh)
	svc := newTestService(store, nil, Config{})

	// About 1.3 km away. Snow doubles the query radius, but high-risk
	// hotspots only trigger inside the base radius.
	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9120, Lon: 79.8500}, "heavy snow")
	require.NoError(t, err)

	assert.False(t, v.InRiskZone)
	assert.Len(t, v.Nearby, 1)
}

func TestCheckLowRiskNeverTriggers(t *testing.T) {
	store := hotspot.NewMemoryStore()
	seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskLow)
	svc := newTestService(store, nil, Config{})

	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9001, Lon: 79.8501}, "")
	require.NoError(t, err)

	assert.False(t, v.InRiskZone)
	assert.NotEmpty(t, v.Nearby)
}

func TestCheckFetchesWeatherWhenOmitted(t *testing.T) {
	store := hotspot.NewMemoryStore()
	seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskMedium)
	w := &stubWeather{obs: &weather.Observation{Description: "moderate rain"}}
	svc := newTestService(store, w, Config{})

	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9120, Lon: 79.8500}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, w.calls)
	assert.Equal(t, "moderate rain", v.WeatherCondition)
	assert.True(t, v.InRiskZone)
}

func TestCheckCallerWeatherSkipsLookup(t *testing.T) {
	store := hotspot.NewMemoryStore()
	w := &stubWeather{obs: &weather.Observation{Description: "rain"}}
	svc := newTestService(store, w, Config{})

	_, err := svc.Check(context.Background(), geo.Point{Lat: 6.9, Lon: 79.85}, "clear sky")
	require.NoError(t, err)

	assert.Equal(t, 0, w.calls)
}

func TestCheckDegradesOnWeatherFailure(t *testing.T) {
	store := hotspot.NewMemoryStore()
	seedHotspot(t, store, geo.Point{Lat: 6.9000, Lon: 79.8500}, hotspot.RiskHigh)
	w := &stubWeather{err: errors.New("upstream down")}
	svc := newTestService(store, w, Config{})

	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9045, Lon: 79.8500}, "")
	require.NoError(t, err)

	assert.Empty(t, v.WeatherCondition)
	assert.True(t, v.InRiskZone)
}

func TestCheckInvalidPosition(t *testing.T) {
	svc := newTestService(hotspot.NewMemoryStore(), nil, Config{})

	_, err := svc.Check(context.Background(), geo.Point{Lat: 99, Lon: 0}, "")
	assert.ErrorIs(t, err, geo.ErrInvalidLocation)
}

func TestCheckNoHotspots(t *testing.T) {
	svc := newTestService(hotspot.NewMemoryStore(), nil, Config{})

	v, err := svc.Check(context.Background(), geo.Point{Lat: 6.9, Lon: 79.85}, "")
	require.NoError(t, err)

	assert.False(t, v.InRiskZone)
	assert.Nil(t, v.NearestHotspotID)
	assert.Empty(t, v.Nearby)
}

func TestWeatherMultiplier(t *testing.T) {
	svc := newTestService(hotspot.NewMemoryStore(), nil, Config{})

	tests := []struct {
		condition string
		want      float64
	}{
		{"", 1.0},
		{"clear sky", 1.0},
		{"light rain", 1.5},
		{"Heavy Rain", 1.5},
		{"fog", 1.5},
		{"heavy snow", 2.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.weatherMultiplier(tt.condition), "condition %q", tt.condition)
	}
}
