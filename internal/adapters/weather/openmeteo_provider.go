// Package weather adapts the Open-Meteo forecast API to the WeatherProvider
// port.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Forecasts refresh hourly upstream; a short TTL keeps repeated planning
// requests for the same area cheap.
const forecastCacheTTL = 15 * time.Minute

// At most this many locations along a route are queried for weather.
const maxSampleLocations = 5

// ResponseCache is the subset of the cache layer this adapter needs. A nil
// cache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// OpenMeteoProvider fetches hourly forecasts. The API needs no key.
type OpenMeteoProvider struct {
	session *http.Client
	baseURL string
	cache   ResponseCache
}

func NewOpenMeteoProvider(cache ResponseCache) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
		cache:   cache,
	}
}

type forecastResponse struct {
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature2m            []float64 `json:"temperature_2m"`
		WindSpeed10m             []float64 `json:"wind_speed_10m"`
		WindDirection10m         []float64 `json:"wind_direction_10m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
}

// GetForecast returns hourly forecasts for one location covering the window
// [start, start+hours].
func (o *OpenMeteoProvider) GetForecast(
	ctx context.Context,
	loc domain.Location,
	start time.Time,
	hours int,
) (_ []domain.WeatherForecast, err error) {
	defer obs.Time(ctx, "openmeteo.GetForecast")(&err)

	if hours <= 0 {
		hours = 24
	}
	forecastDays := hours/24 + 1
	if forecastDays > 7 {
		forecastDays = 7
	}

	raw, err := o.fetchHourly(ctx, loc, forecastDays)
	if err != nil {
		return nil, err
	}

	end := start.Add(time.Duration(hours) * time.Hour)
	forecasts := make([]domain.WeatherForecast, 0, hours+1)
	for i, ts := range raw.Hourly.Time {
		t, err := parseHourlyTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parse forecast time %q: %w", ts, err)
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		f := domain.WeatherForecast{Time: t}
		if i < len(raw.Hourly.Temperature2m) {
			f.TemperatureC = raw.Hourly.Temperature2m[i]
		}
		if i < len(raw.Hourly.WindSpeed10m) {
			f.WindSpeedMS = raw.Hourly.WindSpeed10m[i]
		}
		if i < len(raw.Hourly.WindDirection10m) {
			f.WindDirectionDeg = raw.Hourly.WindDirection10m[i]
		}
		if i < len(raw.Hourly.PrecipitationProbability) {
			f.PrecipitationProbability = raw.Hourly.PrecipitationProbability[i]
		}
		if i < len(raw.Hourly.WeatherCode) {
			f.WeatherCode = raw.Hourly.WeatherCode[i]
		}
		f.Description = DescribeWeatherCode(f.WeatherCode)
		forecasts = append(forecasts, f)
	}

	return forecasts, nil
}

// GetRouteForecast fetches forecasts for up to maxSampleLocations points
// along the route, time-shifting each sample across the expected ride
// duration, then merges and deduplicates the result.
func (o *OpenMeteoProvider) GetRouteForecast(
	ctx context.Context,
	locs []domain.Location,
	start time.Time,
	durationHours int,
) (_ []domain.WeatherForecast, err error) {
	defer obs.Time(ctx, "openmeteo.GetRouteForecast")(&err)

	if len(locs) == 0 {
		return nil, nil
	}
	if durationHours <= 0 {
		durationHours = 1
	}

	sampleCount := maxSampleLocations
	if len(locs) < sampleCount {
		sampleCount = len(locs)
	}
	step := len(locs) / sampleCount
	if step < 1 {
		step = 1
	}
	samples := make([]domain.Location, 0, sampleCount)
	for i := 0; i < len(locs) && len(samples) < sampleCount; i += step {
		samples = append(samples, locs[i])
	}

	var merged []domain.WeatherForecast
	for i, loc := range samples {
		// Later samples are reached later in the ride.
		offset := float64(durationHours) / float64(len(samples)) * float64(i)
		at := start.Add(time.Duration(offset * float64(time.Hour)))

		forecasts, err := o.GetForecast(ctx, loc, at, durationHours)
		if err != nil {
			return nil, fmt.Errorf("route forecast sample %d: %w", i, err)
		}
		merged = append(merged, forecasts...)
	}

	return domain.DedupeForecasts(merged), nil
}

func (o *OpenMeteoProvider) fetchHourly(
	ctx context.Context,
	loc domain.Location,
	forecastDays int,
) (*forecastResponse, error) {
	lat := strconv.FormatFloat(loc.Lat, 'f', 4, 64)
	lng := strconv.FormatFloat(loc.Lng, 'f', 4, 64)
	cacheKey := fmt.Sprintf("weather:%s:%s:%d", lat, lng, forecastDays)

	if o.cache != nil {
		if cached, ok := o.cache.Get(ctx, cacheKey); ok {
			var decoded forecastResponse
			if err := json.Unmarshal(cached, &decoded); err == nil {
				return &decoded, nil
			}
			log.Printf("discarding malformed weather cache entry %q", cacheKey)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create forecast request: %w", err)
	}
	q := req.URL.Query()
	q.Set("latitude", lat)
	q.Set("longitude", lng)
	q.Set("hourly", "temperature_2m,wind_speed_10m,wind_direction_10m,precipitation_probability,weather_code")
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "UTC")
	req.URL.RawQuery = q.Encode()

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, &ports.ProviderError{Provider: "weather", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &ports.ProviderError{
			Provider:   "weather",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(b)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}

	var decoded forecastResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	if o.cache != nil {
		o.cache.Set(ctx, cacheKey, body, forecastCacheTTL)
	}

	return &decoded, nil
}

// Open-Meteo returns hour timestamps without a zone suffix; with timezone=UTC
// they are UTC wall times.
func parseHourlyTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
