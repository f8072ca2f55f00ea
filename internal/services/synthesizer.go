// Package services contains the plan synthesizer: the orchestration layer
// between the HTTP API and the provider adapters.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/planner"
	"cycling-route-service/internal/platform/metrics"
	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

// Independent per-provider deadlines. Routing is fatal so it gets the longest
// budget; elevation and weather degrade gracefully.
const (
	routingTimeout   = 30 * time.Second
	elevationTimeout = 15 * time.Second
	weatherTimeout   = 15 * time.Second
)

// PlanInput is the validated request handed to the synthesizer.
type PlanInput struct {
	Origin        domain.Location
	Destination   domain.Location
	Preferences   domain.RoutePreferences
	DepartureTime time.Time
}

// Emitter receives intermediate synthesis results in order: route data first,
// then the weather outlook, then narrative tokens. Returning an error aborts
// the synthesis.
type Emitter interface {
	RouteData(segments []domain.RouteSegment, totalDistanceKm, totalGainM float64, totalDurationMin int) error
	Weather(forecasts []domain.WeatherForecast) error
	Token(chunk string) error
}

// Synthesizer composes routing, elevation, weather, risk analysis and
// narrative generation into a persisted RoutePlan.
type Synthesizer struct {
	Routes    ports.RouteProvider
	Elevation *planner.Profiler
	Weather   ports.WeatherProvider
	Narrative ports.NarrativeGenerator
	Repo      ports.PlanRepository
	Metrics   *metrics.Collector

	// Overridable in tests.
	Now   func() time.Time
	NewID func() string
}

func NewSynthesizer(
	routes ports.RouteProvider,
	elevation ports.ElevationProvider,
	weather ports.WeatherProvider,
	narrative ports.NarrativeGenerator,
	repo ports.PlanRepository,
	collector *metrics.Collector,
) *Synthesizer {
	return &Synthesizer{
		Routes:    routes,
		Elevation: &planner.Profiler{Provider: elevation},
		Weather:   weather,
		Narrative: narrative,
		Repo:      repo,
		Metrics:   collector,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// Plan runs the full synthesis pipeline. Routing failures are fatal;
// elevation falls back to estimates and weather degrades to an empty
// forecast, both without failing the plan.
func (s *Synthesizer) Plan(ctx context.Context, in PlanInput, emit Emitter) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "planner.Synthesize")(&err)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	routeCtx, cancelRoute := context.WithTimeout(ctx, routingTimeout)
	segments, err := s.Routes.GenerateRoute(routeCtx, in.Origin, in.Destination, in.Preferences)
	cancelRoute()
	if err != nil {
		s.Metrics.RecordProviderFailure("routing", "fatal")
		return nil, fmt.Errorf("generate route: %w", err)
	}
	if len(segments) == 0 {
		s.Metrics.RecordProviderFailure("routing", "fatal")
		return nil, &ports.ProviderError{Provider: "routing", Message: "provider returned no segments", Err: ports.ErrNoResult}
	}

	_, _, estimatedMin := domain.SumSegmentTotals(segments)
	durationHours := estimatedMin / 60
	if durationHours < 1 {
		durationHours = 1
	}

	// Elevation and weather are independent; fetch them concurrently.
	var (
		wg        sync.WaitGroup
		profiles  = make([][]float64, len(segments))
		forecasts []domain.WeatherForecast
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		elevCtx, cancel := context.WithTimeout(ctx, elevationTimeout)
		defer cancel()
		for i, seg := range segments {
			profile, fromFallback := s.Elevation.Profile(elevCtx, seg.Coordinates)
			if fromFallback {
				s.Metrics.RecordProviderFailure("elevation", "degraded")
			}
			profiles[i] = profile
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		wxCtx, cancel := context.WithTimeout(ctx, weatherTimeout)
		defer cancel()
		fc, err := s.Weather.GetRouteForecast(wxCtx, routeLocations(segments), in.DepartureTime, durationHours)
		if err != nil {
			s.Metrics.RecordProviderFailure("weather", "degraded")
			log.Printf("weather forecast degraded to empty: %v", err)
			return
		}
		forecasts = fc
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enriched := make([]domain.RouteSegment, len(segments))
	for i, seg := range segments {
		seg.Elevations = profiles[i]
		if seg.ElevationGainM == 0 && seg.ElevationLossM == 0 {
			seg.ElevationGainM, seg.ElevationLossM = planner.ElevationStats(seg.Elevations)
		}
		enriched[i] = seg
	}

	forecasts = domain.DedupeForecasts(forecasts)
	totalKm, totalGainM, totalMin := domain.SumSegmentTotals(enriched)

	if err := emit.RouteData(enriched, totalKm, totalGainM, totalMin); err != nil {
		return nil, fmt.Errorf("emit route data: %w", err)
	}
	if err := emit.Weather(forecasts); err != nil {
		return nil, fmt.Errorf("emit weather: %w", err)
	}

	assessment := planner.Assess(enriched, forecasts, in.Preferences)

	var narrative strings.Builder
	narrativeReq := ports.NarrativeRequest{
		Segments:            enriched,
		Forecasts:           forecasts,
		TotalDistanceKm:     totalKm,
		TotalElevationGainM: totalGainM,
		Difficulty:          in.Preferences.Difficulty,
	}
	if err := s.Narrative.Stream(ctx, narrativeReq, func(chunk string) error {
		narrative.WriteString(chunk)
		return emit.Token(chunk)
	}); err != nil {
		s.Metrics.RecordProviderFailure("narrative", "fatal")
		return nil, fmt.Errorf("narrative stream: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	newID := uuid.NewString
	if s.NewID != nil {
		newID = s.NewID
	}

	plan := &domain.RoutePlan{
		ID:                  newID(),
		Segments:            enriched,
		TotalDistanceKm:     totalKm,
		TotalElevationGainM: totalGainM,
		TotalDurationMin:    totalMin,
		WeatherForecasts:    forecasts,
		Warnings:            assessment.Warnings,
		RecommendedGear:     assessment.RecommendedGear,
		RiskScore:           assessment.RiskScore,
		Narrative:           narrative.String(),
		CreatedAt:           now().UTC(),
	}

	if err := s.Repo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan %q: %w", plan.ID, err)
	}
	s.Metrics.RecordPlanCreated()

	return plan, nil
}

func validateInput(in PlanInput) error {
	if err := in.Origin.Validate(); err != nil {
		return &ports.ValidationError{Field: "origin", Reason: err.Error()}
	}
	if err := in.Destination.Validate(); err != nil {
		return &ports.ValidationError{Field: "destination", Reason: err.Error()}
	}
	if err := in.Preferences.Validate(); err != nil {
		return &ports.ValidationError{Field: "preferences", Reason: err.Error()}
	}
	if in.DepartureTime.IsZero() {
		return &ports.ValidationError{Field: "departure_time", Reason: "must be set"}
	}
	return nil
}

// routeLocations flattens segment geometry into the location list the weather
// provider samples from. Segments may share geometry, so coordinates are
// deduplicated in order.
func routeLocations(segments []domain.RouteSegment) []domain.Location {
	seen := make(map[domain.Coordinate]struct{})
	var locs []domain.Location
	for _, seg := range segments {
		for _, c := range seg.Coordinates {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			locs = append(locs, domain.Location{Coordinate: c})
		}
	}
	return locs
}
