package ports

import (
	"context"

	"cycling-route-service/internal/domain"
)

// NarrativeRequest carries the route context a narrative is written about.
type NarrativeRequest struct {
	Segments            []domain.RouteSegment
	Forecasts           []domain.WeatherForecast
	TotalDistanceKm     float64
	TotalElevationGainM float64
	Difficulty          string
}

// NarrativeGenerator produces a finite stream of text chunks describing a
// route. Chunks are passed to emit in order and the concatenation of all
// chunks is the complete narrative. Implementations stop early when ctx is
// cancelled or emit returns an error.
type NarrativeGenerator interface {
	Stream(ctx context.Context, req NarrativeRequest, emit func(chunk string) error) error
}
