package api

import (
	"context"
	"net/url"
	"strconv"

	"roadfix/internal/complaint"
)

// Place is a reverse-geocoded address.
type Place struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// ListWorkers returns every field worker.
//
// Endpoint: GET /api/workers
func (c *Client) ListWorkers(ctx context.Context) ([]complaint.Worker, error) {
	var workers []complaint.Worker
	if err := c.getJSON(ctx, "/api/workers", &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// GetStats returns the server's aggregate counts for the caller.
//
// Endpoint: GET /api/stats
func (c *Client) GetStats(ctx context.Context) (*complaint.Stats, error) {
	var stats complaint.Stats
	if err := c.getJSON(ctx, "/api/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReverseGeocode resolves coordinates to a street address.
//
// Endpoint: GET /api/geocode?lat=&lng=
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var place Place
	if err := c.getJSON(ctx, "/api/geocode?"+q.Encode(), &place); err != nil {
		return nil, err
	}
	return &place, nil
}
