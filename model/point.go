// Package model contains core data types for the project.
package model

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"
)

var (
	ErrEmptyName        = errors.New("metric name is required")
	ErrEmptyInstance    = errors.New("instance id is required for an instance point")
	ErrCollectedAtUnset = errors.New("collected_at must be set")
	ErrInvalidValue     = errors.New("metric value is not a finite number")
)

// Point is a single observation of a custom metric.
type Point struct {
	Name        string    // Metric name.
	Value       float64   // Observed value.
	CollectedAt time.Time // When the observation happened; sent with second resolution.
	InstanceID  string    // Instance the observation is bound to, empty for generic metrics.
}

// NewPoint creates a point that is not tied to an instance.
func NewPoint(name string, value float64, collectedAt time.Time) (Point, error) {
	if name == "" {
		return Point{}, ErrEmptyName
	}
	return Point{Name: name, Value: value, CollectedAt: collectedAt}, nil
}

// NewInstancePoint creates a point bound to the given instance.
func NewInstancePoint(name string, value float64, collectedAt time.Time, instanceID string) (Point, error) {
	p, err := NewPoint(name, value, collectedAt)
	if err != nil {
		return Point{}, err
	}
	if instanceID == "" {
		return Point{}, ErrEmptyInstance
	}
	p.InstanceID = instanceID
	return p, nil
}

// EpochSeconds returns CollectedAt as whole seconds since the Unix epoch.
func (p Point) EpochSeconds() (int64, error) {
	if p.CollectedAt.IsZero() {
		return 0, ErrCollectedAtUnset
	}
	return p.CollectedAt.Unix(), nil
}

// SetEpochSeconds sets CollectedAt from a Unix timestamp in seconds.
func (p *Point) SetEpochSeconds(sec int64) {
	p.CollectedAt = time.Unix(sec, 0)
}

type pointJSON struct {
	Name        string      `json:"name"`
	Value       json.Number `json:"value"`
	CollectedAt int64       `json:"collected_at"`
	Instance    string      `json:"instance,omitempty"`
}

// MarshalJSON encodes the point in the gateway wire format.
// The value is always written with six fractional digits.
func (p Point) MarshalJSON() ([]byte, error) {
	sec, err := p.EpochSeconds()
	if err != nil {
		return nil, err
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return nil, ErrInvalidValue
	}
	return json.Marshal(pointJSON{
		Name:        p.Name,
		Value:       json.Number(strconv.FormatFloat(p.Value, 'f', 6, 64)),
		CollectedAt: sec,
		Instance:    p.InstanceID,
	})
}
