package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

// ORSRouteProvider implements RouteProvider using the OpenRouteService
// directions API with the cycling-regular profile.
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	client
	profile string
}

func NewORSRouteProvider(apiKey string) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSRouteProvider{
		client: client{
			session: &http.Client{Timeout: 30 * time.Second},
			apiKey:  apiKey,
			baseURL: "https://api.openrouteservice.org",
		},
		profile: "cycling-regular",
	}, nil
}

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Preference   string      `json:"preference"`
	Elevation    bool        `json:"elevation"`
	Instructions bool        `json:"instructions"`
}

type orsSegment struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
	Ascent   float64 `json:"ascent"`
	Descent  float64 `json:"descent"`
}

type orsExtras struct {
	Surface struct {
		Values [][]int `json:"values"`
	} `json:"surface"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat] or [lng, lat, ele]
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Ascent   float64      `json:"ascent"`
			Descent  float64      `json:"descent"`
			Segments []orsSegment `json:"segments"`
			Extras   orsExtras    `json:"extras"`
		} `json:"properties"`
	} `json:"features"`
}

// GenerateRoute requests a cycling route and maps the GeoJSON response into
// domain segments.
func (o *ORSRouteProvider) GenerateRoute(
	ctx context.Context,
	origin, destination domain.Location,
	prefs domain.RoutePreferences,
) (_ []domain.RouteSegment, err error) {
	defer obs.Time(ctx, "ors.GenerateRoute")(&err)

	payload := directionsRequest{
		Coordinates:  [][]float64{origin.LngLat(), destination.LngLat()},
		Preference:   routePreference(prefs),
		Elevation:    true,
		Instructions: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		return nil, providerError("routing", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return nil, &ports.ProviderError{
			Provider: "routing",
			Message:  "no route found between the given locations",
			Err:      ports.ErrNoResult,
		}
	}

	feature := decoded.Features[0]

	coords := make([]domain.Coordinate, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			return nil, fmt.Errorf("invalid coordinate in directions response: %v", c)
		}
		coords = append(coords, domain.Coordinate{Lat: c[1], Lng: c[0]})
	}

	surface := surfaceFromExtras(feature.Properties.Extras, prefs)

	// ORS does not expose per-segment coordinate offsets, so every segment
	// carries the full route geometry.
	if len(feature.Properties.Segments) == 0 {
		return []domain.RouteSegment{{
			Coordinates:          coords,
			DistanceKm:           feature.Properties.Summary.Distance / 1000,
			ElevationGainM:       feature.Properties.Ascent,
			ElevationLossM:       feature.Properties.Descent,
			EstimatedDurationMin: int(feature.Properties.Summary.Duration / 60),
			Surface:              surface,
		}}, nil
	}

	segments := make([]domain.RouteSegment, 0, len(feature.Properties.Segments))
	for _, s := range feature.Properties.Segments {
		segments = append(segments, domain.RouteSegment{
			Coordinates:          coords,
			DistanceKm:           s.Distance / 1000,
			ElevationGainM:       s.Ascent,
			ElevationLossM:       s.Descent,
			EstimatedDurationMin: int(s.Duration / 60),
			Surface:              surface,
		})
	}

	return segments, nil
}

// routePreference maps rider preferences onto an ORS routing preference.
// Scenic requests take the recommended route, easy rides the shortest one.
func routePreference(prefs domain.RoutePreferences) string {
	if prefs.PreferScenic {
		return "recommended"
	}
	if prefs.Difficulty == domain.DifficultyEasy {
		return "shortest"
	}
	return "fastest"
}

// surfaceFromExtras reads the dominant surface code from the extras block.
// ORS codes 1 (paved) and 3 (asphalt) map to paved, 2 to gravel; without
// surface data the declared difficulty decides.
func surfaceFromExtras(extras orsExtras, prefs domain.RoutePreferences) domain.SurfaceType {
	if len(extras.Surface.Values) > 0 && len(extras.Surface.Values[0]) >= 3 {
		switch extras.Surface.Values[0][2] {
		case 1, 3:
			return domain.SurfacePaved
		case 2:
			return domain.SurfaceGravel
		}
	}
	if prefs.Difficulty == domain.DifficultyHard {
		return domain.SurfaceGravel
	}
	return domain.SurfacePaved
}

// providerError maps transport-level failures onto the port error type,
// preserving the upstream status code when one exists.
func providerError(provider string, err error) error {
	var he *httpStatusError
	if errors.As(err, &he) {
		return &ports.ProviderError{
			Provider:   provider,
			StatusCode: he.Code,
			Message:    he.Body,
			Err:        err,
		}
	}
	return &ports.ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}
