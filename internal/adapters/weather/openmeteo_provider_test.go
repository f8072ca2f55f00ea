package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

func hourlyFixture(startHour, count int) map[string]any {
	times := make([]string, count)
	temps := make([]float64, count)
	winds := make([]float64, count)
	dirs := make([]float64, count)
	precips := make([]float64, count)
	codes := make([]int, count)
	for i := 0; i < count; i++ {
		times[i] = time.Date(2026, 3, 15, startHour+i, 0, 0, 0, time.UTC).Format("2006-01-02T15:04")
		temps[i] = 15 + float64(i)
		winds[i] = 5
		dirs[i] = 180
		precips[i] = 10
		codes[i] = 1
	}
	return map[string]any{
		"hourly": map[string]any{
			"time":                      times,
			"temperature_2m":            temps,
			"wind_speed_10m":            winds,
			"wind_direction_10m":        dirs,
			"precipitation_probability": precips,
			"weather_code":              codes,
		},
	}
}

func testProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &OpenMeteoProvider{session: srv.Client(), baseURL: srv.URL}
}

func TestGetForecastFiltersWindow(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("wind_speed_unit"); got != "ms" {
			t.Errorf("expected wind_speed_unit=ms, got %q", got)
		}
		json.NewEncoder(w).Encode(hourlyFixture(0, 24))
	})

	loc := domain.Location{Coordinate: domain.Coordinate{Lat: 34.573, Lng: 135.483}}
	start := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	forecasts, err := provider.GetForecast(context.Background(), loc, start, 4)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	// Hours 8..12 inclusive.
	if len(forecasts) != 5 {
		t.Fatalf("expected 5 forecasts in window, got %d", len(forecasts))
	}
	if !forecasts[0].Time.Equal(start) {
		t.Fatalf("expected window start %v, got %v", start, forecasts[0].Time)
	}
	if forecasts[0].Description != "Mainly clear" {
		t.Fatalf("expected description for code 1, got %q", forecasts[0].Description)
	}
}

func TestGetForecastUpstreamError(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	loc := domain.Location{Coordinate: domain.Coordinate{Lat: 34.5, Lng: 135.5}}
	_, err := provider.GetForecast(context.Background(), loc, time.Now().UTC(), 24)
	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", pe.StatusCode)
	}
}

func TestGetRouteForecastSamplesAtMostFive(t *testing.T) {
	var calls atomic.Int64
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(hourlyFixture(0, 24))
	})

	locs := make([]domain.Location, 40)
	for i := range locs {
		locs[i] = domain.Location{Coordinate: domain.Coordinate{Lat: 34.0 + float64(i)*0.01, Lng: 135.0}}
	}
	start := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)

	forecasts, err := provider.GetRouteForecast(context.Background(), locs, start, 5)
	if err != nil {
		t.Fatalf("GetRouteForecast: %v", err)
	}
	if calls.Load() != 5 {
		t.Fatalf("expected 5 upstream calls, got %d", calls.Load())
	}
	for i := 1; i < len(forecasts); i++ {
		if !forecasts[i-1].Time.Before(forecasts[i].Time) {
			t.Fatalf("merged forecasts not deduplicated and sorted: %v then %v", forecasts[i-1].Time, forecasts[i].Time)
		}
	}
}

func TestGetRouteForecastEmptyLocations(t *testing.T) {
	provider := NewOpenMeteoProvider(nil)
	forecasts, err := provider.GetRouteForecast(context.Background(), nil, time.Now(), 3)
	if err != nil || forecasts != nil {
		t.Fatalf("expected nil result, got %v err=%v", forecasts, err)
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	if got := DescribeWeatherCode(95); got != "Thunderstorm" {
		t.Fatalf("expected Thunderstorm, got %q", got)
	}
	if got := DescribeWeatherCode(42); got != "Unknown (code 42)" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}
