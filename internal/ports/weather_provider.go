package ports

import (
	"context"
	"time"

	"cycling-route-service/internal/domain"
)

// WeatherProvider serves hourly forecasts for points on or near the route.
type WeatherProvider interface {
	// GetForecast returns hourly forecasts for one location covering
	// [start, start+hours].
	GetForecast(ctx context.Context, loc domain.Location, start time.Time, hours int) ([]domain.WeatherForecast, error)

	// GetRouteForecast samples the given locations along a route and merges
	// their forecasts, time-shifted across the expected ride duration. The
	// result is deduplicated by timestamp and ordered by time.
	GetRouteForecast(ctx context.Context, locs []domain.Location, start time.Time, durationHours int) ([]domain.WeatherForecast, error)
}
