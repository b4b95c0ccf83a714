// Package geo resolves addresses to coordinates and measures driving
// distances. Failures are marked with domain.ErrUpstream.
package geo

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"googlemaps.github.io/maps"

	"github.com/Domenick1991/domora/internal/domain"
)

type Service interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
	DrivingDistanceKm(ctx context.Context, from, to domain.Coordinates) (float64, error)
}

type GoogleMaps struct {
	client *maps.Client
}

func NewGoogleMaps(apiKey string, opts ...maps.ClientOption) (*GoogleMaps, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, errors.Annotate(err, "create maps client")
	}
	return &GoogleMaps{client: client}, nil
}

func (g *GoogleMaps) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: %w", address, domain.ErrUpstream, err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: no results", address, domain.ErrUpstream)
	}
	loc := results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (g *GoogleMaps) DrivingDistanceKm(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(from)},
		Destinations: []string{latLng(to)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w: %w", domain.ErrUpstream, err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix: %w: empty response", domain.ErrUpstream)
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance matrix: %w: element status %s", domain.ErrUpstream, el.Status)
	}
	return float64(el.Distance.Meters) / 1000, nil
}

func latLng(c domain.Coordinates) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// Disabled is used when no maps API key is configured. Every lookup fails,
// which pricing treats as a zero travel fee.
type Disabled struct{}

func (Disabled) Geocode(context.Context, string) (domain.Coordinates, error) {
	return domain.Coordinates{}, errors.NotSupportedf("geocoding without a maps API key")
}

func (Disabled) DrivingDistanceKm(context.Context, domain.Coordinates, domain.Coordinates) (float64, error) {
	return 0, errors.NotSupportedf("distance lookup without a maps API key")
}

var (
	_ Service = (*GoogleMaps)(nil)
	_ Service = Disabled{}
)
