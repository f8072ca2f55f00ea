package domain

import (
	"fmt"
	"time"
)

// SurfaceType classifies the riding surface of a route segment.
type SurfaceType string

const (
	SurfacePaved  SurfaceType = "paved"
	SurfaceGravel SurfaceType = "gravel"
	SurfaceDirt   SurfaceType = "dirt"
)

// Unpaved reports whether the surface calls for wider tires.
func (s SurfaceType) Unpaved() bool {
	return s == SurfaceGravel || s == SurfaceDirt
}

// Represents one leg of a planned cycling route. Geometry and statistics are
// fixed when the route provider creates the segment; enrichment (elevation
// profiles) produces new values instead of mutating existing ones.
type RouteSegment struct {
	Coordinates          []Coordinate
	Elevations           []float64 // one value per coordinate when populated
	DistanceKm           float64
	ElevationGainM       float64
	ElevationLossM       float64
	EstimatedDurationMin int
	Surface              SurfaceType
}

// Difficulty levels accepted in route preferences.
const (
	DifficultyEasy     = "easy"
	DifficultyModerate = "moderate"
	DifficultyHard     = "hard"
)

// RoutePreferences captures the rider's constraints for route generation.
type RoutePreferences struct {
	Difficulty        string
	AvoidTraffic      bool
	PreferScenic      bool
	MaxDistanceKm     *float64
	MaxElevationGainM *float64
}

// Validate rejects unknown difficulty levels and non-positive limits.
func (p RoutePreferences) Validate() error {
	switch p.Difficulty {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
	default:
		return fmt.Errorf("difficulty %q must be one of easy, moderate, hard", p.Difficulty)
	}
	if p.MaxDistanceKm != nil && *p.MaxDistanceKm <= 0 {
		return fmt.Errorf("max distance %.1fkm must be positive", *p.MaxDistanceKm)
	}
	if p.MaxElevationGainM != nil && *p.MaxElevationGainM < 0 {
		return fmt.Errorf("max elevation gain %.0fm must not be negative", *p.MaxElevationGainM)
	}
	return nil
}

// RiskAssessment is the outcome of analyzing a route against its weather and
// terrain context.
type RiskAssessment struct {
	Warnings        []string
	RecommendedGear []string
	RiskScore       float64
}

// Represents a fully synthesized plan: route geometry, weather, risk analysis
// and narrative, ready for persistence. It is immutable planning data and
// contains no side effects.
type RoutePlan struct {
	ID                  string
	Segments            []RouteSegment
	TotalDistanceKm     float64
	TotalElevationGainM float64
	TotalDurationMin    int
	WeatherForecasts    []WeatherForecast
	Warnings            []string
	RecommendedGear     []string
	RiskScore           float64
	Narrative           string
	CreatedAt           time.Time
}

// SumSegmentTotals derives plan totals from the segment statistics. Plan
// totals are always sums over segments, never independent figures.
func SumSegmentTotals(segments []RouteSegment) (distanceKm, gainM float64, durationMin int) {
	for _, s := range segments {
		distanceKm += s.DistanceKm
		gainM += s.ElevationGainM
		durationMin += s.EstimatedDurationMin
	}
	return distanceKm, gainM, durationMin
}
