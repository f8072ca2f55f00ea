package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

// ResponseCache is the subset of the cache layer the geocoder needs. A nil
// cache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Geocode results change rarely; cache them for a day.
const geocodeCacheTTL = 24 * time.Hour

// ORSGeocoder implements Geocoder using the OpenRouteService geocode search
// endpoint, with an optional TTL cache in front of it.
type ORSGeocoder struct {
	client
	cache ResponseCache
}

func NewORSGeocoder(apiKey string, cache ResponseCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ORS api key is empty")
	}

	return &ORSGeocoder{
		client: client{
			session: &http.Client{Timeout: 10 * time.Second},
			apiKey:  apiKey,
			baseURL: "https://api.openrouteservice.org",
		},
		cache: cache,
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
			Name  string `json:"name"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves a place query to up to five candidate locations.
func (g *ORSGeocoder) Geocode(
	ctx context.Context,
	query, country string,
) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := strings.Join(strings.Fields(query), " ")
	if norm == "" {
		return nil, &ports.ValidationError{Field: "query", Reason: "must be non-empty"}
	}
	if country == "" {
		country = "JP"
	}

	cacheKey := "geocode:" + country + ":" + strings.ToLower(norm)
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, cacheKey); ok {
			var locations []domain.Location
			if err := json.Unmarshal(cached, &locations); err == nil {
				return locations, nil
			}
			log.Printf("discarding malformed geocode cache entry %q", cacheKey)
		}
	}

	endpoint := g.baseURL + "/geocode/search"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", country)
		q.Set("size", "5")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, providerError("geocoding", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return nil, &ports.ProviderError{
			Provider: "geocoding",
			Message:  fmt.Sprintf("no results for %q", norm),
			Err:      ports.ErrNoResult,
		}
	}

	locations := make([]domain.Location, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		if len(f.Geometry.Coordinates) != 2 {
			return nil, fmt.Errorf("invalid coordinate format for %q", norm)
		}
		name := f.Properties.Label
		if name == "" {
			name = f.Properties.Name
		}
		locations = append(locations, domain.Location{
			Coordinate: domain.Coordinate{
				Lat: f.Geometry.Coordinates[1],
				Lng: f.Geometry.Coordinates[0],
			},
			Name: name,
		})
	}

	if g.cache != nil {
		if encoded, err := json.Marshal(locations); err == nil {
			g.cache.Set(ctx, cacheKey, encoded, geocodeCacheTTL)
		}
	}

	return locations, nil
}
