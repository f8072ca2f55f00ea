package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

type stubGeocoder struct {
	locations  []domain.Location
	err        error
	gotQuery   string
	gotCountry string
}

func (s *stubGeocoder) Geocode(ctx context.Context, query, country string) ([]domain.Location, error) {
	s.gotQuery = query
	s.gotCountry = country
	return s.locations, s.err
}

func TestGeocodeSearch(t *testing.T) {
	geocoder := &stubGeocoder{locations: []domain.Location{
		{Coordinate: domain.Coordinate{Lat: 34.573, Lng: 135.483}, Name: "Sakai, Osaka, Japan"},
	}}
	handler := &GeocodeHandler{Geocoder: geocoder}

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?query=Sakai", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if geocoder.gotCountry != "JP" {
		t.Fatalf("expected default country JP, got %q", geocoder.gotCountry)
	}

	var res dto.GeocodeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Locations) != 1 || res.Locations[0].Name != "Sakai, Osaka, Japan" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestGeocodeSearchMissingQuery(t *testing.T) {
	handler := &GeocodeHandler{Geocoder: &stubGeocoder{}}

	req := httptest.NewRequest(http.MethodGet, "/api/geocode", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGeocodeSearchNoResults(t *testing.T) {
	handler := &GeocodeHandler{Geocoder: &stubGeocoder{
		err: &ports.ProviderError{Provider: "geocoding", Message: "no results", Err: ports.ErrNoResult},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?query=nowhere", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
