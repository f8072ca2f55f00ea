package dto

import (
	"time"

	"cycling-route-service/internal/domain"
)

type LocationDTO struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

type PreferencesDTO struct {
	Difficulty        string   `json:"difficulty"`
	AvoidTraffic      bool     `json:"avoid_traffic"`
	PreferScenic      bool     `json:"prefer_scenic"`
	MaxDistanceKm     *float64 `json:"max_distance_km,omitempty"`
	MaxElevationGainM *float64 `json:"max_elevation_gain_m,omitempty"`
}

type PlanRequest struct {
	Origin        LocationDTO    `json:"origin"`
	Destination   LocationDTO    `json:"destination"`
	Preferences   PreferencesDTO `json:"preferences"`
	DepartureTime *time.Time     `json:"departure_time,omitempty"`
}

type SegmentResponse struct {
	Coordinates          [][]float64 `json:"coordinates"` // [lat, lng]
	Elevations           []float64   `json:"elevations,omitempty"`
	DistanceKm           float64     `json:"distance_km"`
	ElevationGainM       float64     `json:"elevation_gain_m"`
	ElevationLossM       float64     `json:"elevation_loss_m"`
	EstimatedDurationMin int         `json:"estimated_duration_min"`
	SurfaceType          string      `json:"surface_type"`
}

// RouteDataEvent is the payload of the route_data stream event.
type RouteDataEvent struct {
	Segments            []SegmentResponse `json:"segments"`
	TotalDistanceKm     float64           `json:"total_distance_km"`
	TotalElevationGainM float64           `json:"total_elevation_gain_m"`
	TotalDurationMin    int               `json:"total_duration_min"`
}

type ForecastResponse struct {
	Time                     time.Time `json:"time"`
	TemperatureC             float64   `json:"temperature_c"`
	WindSpeedMS              float64   `json:"wind_speed_ms"`
	WindDirectionDeg         float64   `json:"wind_direction_deg"`
	PrecipitationProbability float64   `json:"precipitation_probability"`
	WeatherCode              int       `json:"weather_code"`
	Description              string    `json:"description"`
}

type PlanResponse struct {
	ID                  string             `json:"id"`
	Segments            []SegmentResponse  `json:"segments"`
	TotalDistanceKm     float64            `json:"total_distance_km"`
	TotalElevationGainM float64            `json:"total_elevation_gain_m"`
	TotalDurationMin    int                `json:"total_duration_min"`
	WeatherForecasts    []ForecastResponse `json:"weather_forecasts"`
	Warnings            []string           `json:"warnings"`
	RecommendedGear     []string           `json:"recommended_gear"`
	RiskScore           float64            `json:"risk_score"`
	Narrative           string             `json:"narrative"`
	CreatedAt           time.Time          `json:"created_at"`
}

type HistoryResponse struct {
	Plans []PlanResponse `json:"plans"`
}

func FromSegment(s domain.RouteSegment) SegmentResponse {
	coords := make([][]float64, 0, len(s.Coordinates))
	for _, c := range s.Coordinates {
		coords = append(coords, []float64{c.Lat, c.Lng})
	}
	return SegmentResponse{
		Coordinates:          coords,
		Elevations:           s.Elevations,
		DistanceKm:           s.DistanceKm,
		ElevationGainM:       s.ElevationGainM,
		ElevationLossM:       s.ElevationLossM,
		EstimatedDurationMin: s.EstimatedDurationMin,
		SurfaceType:          string(s.Surface),
	}
}

func FromSegments(segments []domain.RouteSegment) []SegmentResponse {
	out := make([]SegmentResponse, 0, len(segments))
	for _, s := range segments {
		out = append(out, FromSegment(s))
	}
	return out
}

func FromForecast(f domain.WeatherForecast) ForecastResponse {
	return ForecastResponse{
		Time:                     f.Time,
		TemperatureC:             f.TemperatureC,
		WindSpeedMS:              f.WindSpeedMS,
		WindDirectionDeg:         f.WindDirectionDeg,
		PrecipitationProbability: f.PrecipitationProbability,
		WeatherCode:              f.WeatherCode,
		Description:              f.Description,
	}
}

func FromForecasts(forecasts []domain.WeatherForecast) []ForecastResponse {
	out := make([]ForecastResponse, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, FromForecast(f))
	}
	return out
}

func FromPlan(p *domain.RoutePlan) PlanResponse {
	return PlanResponse{
		ID:                  p.ID,
		Segments:            FromSegments(p.Segments),
		TotalDistanceKm:     p.TotalDistanceKm,
		TotalElevationGainM: p.TotalElevationGainM,
		TotalDurationMin:    p.TotalDurationMin,
		WeatherForecasts:    FromForecasts(p.WeatherForecasts),
		Warnings:            p.Warnings,
		RecommendedGear:     p.RecommendedGear,
		RiskScore:           p.RiskScore,
		Narrative:           p.Narrative,
		CreatedAt:           p.CreatedAt,
	}
}

type GeocodeResult struct {
	Locations []LocationDTO `json:"locations"`
}

func FromLocations(locs []domain.Location) GeocodeResult {
	out := GeocodeResult{Locations: make([]LocationDTO, 0, len(locs))}
	for _, l := range locs {
		out.Locations = append(out.Locations, LocationDTO{Lat: l.Lat, Lng: l.Lng, Name: l.Name})
	}
	return out
}
