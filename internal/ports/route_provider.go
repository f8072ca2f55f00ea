package ports

import (
	"context"

	"cycling-route-service/internal/domain"
)

// RouteProvider generates a cycling route between two locations. A successful
// result always contains at least one segment.
type RouteProvider interface {
	GenerateRoute(ctx context.Context, origin, destination domain.Location, prefs domain.RoutePreferences) ([]domain.RouteSegment, error)
}

// Geocoder resolves a free-text place query into candidate locations.
type Geocoder interface {
	Geocode(ctx context.Context, query, country string) ([]domain.Location, error)
}
