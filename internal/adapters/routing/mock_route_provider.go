package routing

import (
	"context"

	"cycling-route-service/internal/domain"
)

// MockRouteProvider returns a canned route, for local development and tests.
type MockRouteProvider struct {
	Segments []domain.RouteSegment
	Err      error
}

func (m *MockRouteProvider) GenerateRoute(
	ctx context.Context,
	origin, destination domain.Location,
	prefs domain.RoutePreferences,
) ([]domain.RouteSegment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Segments, nil
}
