package domain

import (
	"slices"
	"time"
)

// WeatherForecast is a single hourly forecast point along the route.
type WeatherForecast struct {
	Time                     time.Time
	TemperatureC             float64
	WindSpeedMS              float64
	WindDirectionDeg         float64
	PrecipitationProbability float64
	WeatherCode              int
	Description              string
}

// DedupeForecasts collapses forecasts sharing the same timestamp (the last
// occurrence wins) and returns the result ordered by time ascending.
func DedupeForecasts(forecasts []WeatherForecast) []WeatherForecast {
	if len(forecasts) == 0 {
		return nil
	}
	byTime := make(map[time.Time]WeatherForecast, len(forecasts))
	for _, f := range forecasts {
		byTime[f.Time] = f
	}
	out := make([]WeatherForecast, 0, len(byTime))
	for _, f := range byTime {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b WeatherForecast) int {
		return a.Time.Compare(b.Time)
	})
	return out
}
