// Package models provides request and response models for the RoadWatch API.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrPartialPoint is returned when a coordinate payload carries only one of
// lat/lon. A location is both coordinates or nothing.
var ErrPartialPoint = errors.New("location requires both lat and lon")

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lon float64 `json:"lon" validate:"lng"`
}

// UnmarshalJSON implements json.Unmarshaler for Point. A half-set coordinate
// would otherwise decode the missing field to 0, a valid position on the
// equator or prime meridian, so both fields are required on the wire.
func (p *Point) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Lat == nil || raw.Lon == nil {
		return ErrPartialPoint
	}
	p.Lat = *raw.Lat
	p.Lon = *raw.Lon
	return nil
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a helper type for time.Time with RFC3339 JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	// Remove quotes
	s := string(data[1 : len(data)-1])
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
