// Package elevation adapts the Open-Meteo elevation API to the
// ElevationProvider port.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/elevation"

// OpenMeteoProvider fetches terrain elevations in a single batched request.
// The API needs no key.
type OpenMeteoProvider struct {
	session *http.Client
	baseURL string
}

func NewOpenMeteoProvider() *OpenMeteoProvider {
	return &OpenMeteoProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type elevationResponse struct {
	Elevation []float64 `json:"elevation"`
}

// FetchElevations returns one elevation per coordinate, in input order.
func (o *OpenMeteoProvider) FetchElevations(
	ctx context.Context,
	coords []domain.Coordinate,
) (_ []float64, err error) {
	defer obs.Time(ctx, "openmeteo.FetchElevations")(&err)

	if len(coords) == 0 {
		return nil, nil
	}

	lats := make([]string, len(coords))
	lngs := make([]string, len(coords))
	for i, c := range coords {
		lats[i] = strconv.FormatFloat(c.Lat, 'f', -1, 64)
		lngs[i] = strconv.FormatFloat(c.Lng, 'f', -1, 64)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create elevation request: %w", err)
	}
	q := req.URL.Query()
	q.Set("latitude", strings.Join(lats, ","))
	q.Set("longitude", strings.Join(lngs, ","))
	req.URL.RawQuery = q.Encode()

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, &ports.ProviderError{Provider: "elevation", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &ports.ProviderError{
			Provider:   "elevation",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(b)),
		}
	}

	var decoded elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}

	if len(decoded.Elevation) == 0 {
		return nil, &ports.ProviderError{
			Provider: "elevation",
			Message:  "empty elevation list",
			Err:      ports.ErrNoResult,
		}
	}

	return decoded.Elevation, nil
}
