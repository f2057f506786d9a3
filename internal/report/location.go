package report

import (
	"context"
	"log"

	"roadfix/internal/api"
	"roadfix/internal/geo"
)

// Location status lines shown under the location field.
const (
	StatusLocationCaptured    = "✓ Location captured successfully!"
	StatusCoordinatesCaptured = "✓ Coordinates captured"
	StatusLocationFailed      = "Failed to get location. Please enter manually."
)

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*api.Place, error)
}

// Location is what the form's location fields are filled with.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// ResolveLocation fills the location fields.
//
// Fallbacks, in order:
//   - locator and geocoder succeed: the server's address and coordinates
//   - geocoder fails: "Lat: x.xxxx, Long: y.yyyy" with the raw coordinates
//   - locator fails: the configured default location
//
// Returns the location and the status line to show.
func ResolveLocation(ctx context.Context, locator geo.Locator, geocoder Geocoder, fallback Location) (Location, string) {
	pos, err := locator.Locate(ctx)
	if err != nil {
		log.Printf("  ⚠️  Geolocation failed, using default location: %v\n", err)
		return fallback, StatusLocationFailed
	}

	place, err := geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
	if err != nil || place == nil || place.Address == "" {
		if err != nil {
			log.Printf("  ⚠️  Reverse geocoding failed: %v\n", err)
		}
		return Location{
			Name:      pos.String(),
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
		}, StatusCoordinatesCaptured
	}

	lat, lng := place.Lat, place.Lng
	if lat == 0 && lng == 0 {
		lat, lng = pos.Latitude, pos.Longitude
	}
	return Location{Name: place.Address, Latitude: lat, Longitude: lng}, StatusLocationCaptured
}
