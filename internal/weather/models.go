// Package weather supplies current road-weather conditions to the alert and
// analytics layers.
package weather

import (
	"errors"
	"time"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
)

// Observation represents weather at a specific point and time.
type Observation struct {
	// Location the observation applies to.
	Location geo.Point

	// Temperature in Celsius.
	Temperature float64

	// WindSpeed in m/s.
	WindSpeed float64

	// Visibility in meters.
	Visibility float64

	// Condition is the normalized condition class.
	Condition Condition

	// Description is the provider's human-readable condition, e.g.
	// "light rain". This is what the alert policy matches against.
	Description string

	// Timestamps
	ObservedAt time.Time
	FetchedAt  time.Time
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// Adverse reports whether the condition degrades driving safety enough to
// widen alert radii.
func (c Condition) Adverse() bool {
	switch c {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm,
		ConditionSnow, ConditionFog, ConditionMist:
		return true
	default:
		return false
	}
}
