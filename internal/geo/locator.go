// Package geo acquires the device position for new complaint reports.
//
// Two locators are provided:
//   - StaticLocator: a fixed position, or ErrUnavailable when none is set
//   - BrowserLocator: asks a headless Chrome for navigator.geolocation,
//     with permissions granted and the position fed through DevTools
//
// Reverse geocoding is not done here; the report form sends coordinates
// to the API's /api/geocode endpoint.
package geo

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable means no position source is configured.
var ErrUnavailable = errors.New("geolocation unavailable")

// Position is a WGS84 coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // meters, 0 if unknown
}

// Valid reports whether the coordinates are inside WGS84 bounds and not
// the null island placeholder.
func (p Position) Valid() bool {
	if p.Latitude == 0 && p.Longitude == 0 {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func (p Position) String() string {
	return fmt.Sprintf("Lat: %.4f, Long: %.4f", p.Latitude, p.Longitude)
}

// Locator returns the current device position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// StaticLocator always answers with the same position.
type StaticLocator struct {
	Position Position
}

// Locate returns the configured position, or ErrUnavailable if it is not
// a valid coordinate.
func (l StaticLocator) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if !l.Position.Valid() {
		return Position{}, ErrUnavailable
	}
	return l.Position, nil
}
