// Package planner holds the deterministic route-analysis core: elevation
// profile math and risk/gear assessment. Nothing here performs I/O except
// Profiler, which wraps an elevation provider with the sampling and fallback
// policy.
package planner

import (
	"context"
	"log"
	"math"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

// The elevation API accepts at most this many points per request; longer
// geometries are sampled down and interpolated back.
const MaxElevationPoints = 100

// SampleCoordinates selects at most maxPoints coordinates spaced evenly
// across the input. The exact first and last coordinates are always kept.
func SampleCoordinates(coords []domain.Coordinate, maxPoints int) []domain.Coordinate {
	if len(coords) <= maxPoints {
		return coords
	}
	step := float64(len(coords)-1) / float64(maxPoints-1)
	out := make([]domain.Coordinate, 0, maxPoints)
	for i := 0; i < maxPoints-1; i++ {
		out = append(out, coords[int(float64(i)*step)])
	}
	return append(out, coords[len(coords)-1])
}

// InterpolateElevations stretches sampledCount elevation values back to
// targetCount using linear interpolation between neighbouring samples. When
// no stretching is needed the original values are returned unchanged.
func InterpolateElevations(elevations []float64, sampledCount, targetCount int) []float64 {
	if targetCount == 1 || sampledCount >= targetCount {
		if targetCount > len(elevations) {
			targetCount = len(elevations)
		}
		return elevations[:targetCount]
	}
	out := make([]float64, 0, targetCount)
	for i := 0; i < targetCount; i++ {
		pos := float64(i) / float64(targetCount-1) * float64(sampledCount-1)
		lower := int(pos)
		upper := lower + 1
		if upper > sampledCount-1 {
			upper = sampledCount - 1
		}
		if lower == upper {
			out = append(out, elevations[lower])
			continue
		}
		frac := pos - float64(lower)
		out = append(out, elevations[lower]*(1-frac)+elevations[upper]*frac)
	}
	return out
}

// ElevationStats sums the positive and negative deltas between consecutive
// profile points. Fewer than two points yields zero gain and loss.
func ElevationStats(elevations []float64) (gainM, lossM float64) {
	for i := 1; i < len(elevations); i++ {
		diff := elevations[i] - elevations[i-1]
		if diff > 0 {
			gainM += diff
		} else {
			lossM -= diff
		}
	}
	return gainM, lossM
}

// EstimateElevations is the offline fallback when the elevation provider is
// unavailable: a rough latitude-based estimate, never negative.
func EstimateElevations(coords []domain.Coordinate) []float64 {
	out := make([]float64, len(coords))
	for i, c := range coords {
		out[i] = math.Max(0, (math.Abs(c.Lat)-30)*50)
	}
	return out
}

// Profiler produces one elevation value per route coordinate, working around
// the provider's per-request point limit via sampling and interpolation.
type Profiler struct {
	Provider ports.ElevationProvider
}

// Profile returns elevations matching coords 1:1. Provider failures and
// malformed responses degrade to EstimateElevations; the second return value
// reports whether the fallback was used. Elevation is a display enhancement,
// so the caller never sees an error.
func (p *Profiler) Profile(ctx context.Context, coords []domain.Coordinate) ([]float64, bool) {
	if len(coords) == 0 {
		return nil, false
	}
	sampled := SampleCoordinates(coords, MaxElevationPoints)
	elevations, err := p.Provider.FetchElevations(ctx, sampled)
	if err != nil || len(elevations) != len(sampled) {
		log.Printf("elevation profile fallback points=%d err=%v", len(coords), err)
		return EstimateElevations(coords), true
	}
	if len(sampled) < len(coords) {
		elevations = InterpolateElevations(elevations, len(sampled), len(coords))
	}
	return elevations, false
}
