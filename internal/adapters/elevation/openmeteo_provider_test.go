package elevation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

func testProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &OpenMeteoProvider{session: srv.Client(), baseURL: srv.URL}
}

func TestFetchElevationsSuccess(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		lats := r.URL.Query().Get("latitude")
		if len(strings.Split(lats, ",")) != 3 {
			t.Errorf("expected 3 latitudes, got %q", lats)
		}
		json.NewEncoder(w).Encode(map[string]any{"elevation": []float64{100, 150, 200}})
	})

	coords := []domain.Coordinate{
		{Lat: 34.573, Lng: 135.483},
		{Lat: 34.560, Lng: 135.500},
		{Lat: 34.550, Lng: 135.520},
	}
	got, err := provider.FetchElevations(context.Background(), coords)
	if err != nil {
		t.Fatalf("FetchElevations: %v", err)
	}
	if len(got) != 3 || got[0] != 100 || got[2] != 200 {
		t.Fatalf("unexpected elevations %v", got)
	}
}

func TestFetchElevationsEmptyInput(t *testing.T) {
	provider := NewOpenMeteoProvider()
	got, err := provider.FetchElevations(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil result for empty input, got %v err=%v", got, err)
	}
}

func TestFetchElevationsEmptyResponse(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"elevation": []float64{}})
	})

	_, err := provider.FetchElevations(context.Background(), []domain.Coordinate{{Lat: 34.5, Lng: 135.5}})
	if !errors.Is(err, ports.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestFetchElevationsUpstreamError(t *testing.T) {
	provider := testProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})

	_, err := provider.FetchElevations(context.Background(), []domain.Coordinate{{Lat: 34.5, Lng: 135.5}})
	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", pe.StatusCode)
	}
}
