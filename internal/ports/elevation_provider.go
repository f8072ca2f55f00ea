package ports

import (
	"context"

	"cycling-route-service/internal/domain"
)

// ElevationProvider resolves terrain elevations, returning exactly one value
// per input coordinate in the same order.
type ElevationProvider interface {
	FetchElevations(ctx context.Context, coords []domain.Coordinate) ([]float64, error)
}
