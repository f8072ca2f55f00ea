package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cycling-route-service/internal/adapters/narrative"
	"cycling-route-service/internal/adapters/routing"
	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/planner"
	"cycling-route-service/internal/ports"
	"cycling-route-service/internal/services"
)

type fixedElevation struct{}

func (fixedElevation) FetchElevations(ctx context.Context, coords []domain.Coordinate) ([]float64, error) {
	out := make([]float64, len(coords))
	for i := range out {
		out[i] = 100
	}
	return out, nil
}

type emptyWeather struct{}

func (emptyWeather) GetForecast(ctx context.Context, loc domain.Location, start time.Time, hours int) ([]domain.WeatherForecast, error) {
	return nil, nil
}

func (emptyWeather) GetRouteForecast(ctx context.Context, locs []domain.Location, start time.Time, durationHours int) ([]domain.WeatherForecast, error) {
	return nil, nil
}

type fakeRepo struct {
	plans map[string]*domain.RoutePlan
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{plans: make(map[string]*domain.RoutePlan)}
}

func (f *fakeRepo) Save(ctx context.Context, plan *domain.RoutePlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*domain.RoutePlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, ports.ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int) ([]*domain.RoutePlan, error) {
	out := make([]*domain.RoutePlan, 0, len(f.plans))
	for _, p := range f.plans {
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func testPlanHandler(routeProvider ports.RouteProvider, repo ports.PlanRepository) *PlanHandler {
	return &PlanHandler{Synthesizer: &services.Synthesizer{
		Routes:    routeProvider,
		Elevation: &planner.Profiler{Provider: fixedElevation{}},
		Weather:   emptyWeather{},
		Narrative: narrative.TemplateGenerator{},
		Repo:      repo,
		NewID:     func() string { return "plan-123" },
	}}
}

func routeSegments() []domain.RouteSegment {
	coords := []domain.Coordinate{{Lat: 34.573, Lng: 135.483}, {Lat: 34.520, Lng: 135.520}}
	return []domain.RouteSegment{
		{Coordinates: coords, DistanceKm: 20, ElevationGainM: 150, ElevationLossM: 150, EstimatedDurationMin: 80, Surface: domain.SurfacePaved},
	}
}

const validPlanBody = `{
	"origin": {"lat": 34.573, "lng": 135.483, "name": "Sakai"},
	"destination": {"lat": 34.520, "lng": 135.520},
	"preferences": {"difficulty": "moderate", "prefer_scenic": true},
	"departure_time": "2026-03-15T08:00:00Z"
}`

func TestPlanStreamsEventsInOrder(t *testing.T) {
	repo := newFakeRepo()
	handler := testPlanHandler(&routing.MockRouteProvider{Segments: routeSegments()}, repo)

	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(validPlanBody))
	rec := httptest.NewRecorder()
	handler.Plan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream content type, got %q", ct)
	}

	body := rec.Body.String()
	order := []string{"event: route_data", "event: weather", "event: token", "event: done"}
	pos := -1
	for _, marker := range order {
		idx := strings.Index(body, marker)
		if idx == -1 {
			t.Fatalf("missing %q in stream:\n%s", marker, body)
		}
		if idx < pos {
			t.Fatalf("%q out of order in stream:\n%s", marker, body)
		}
		pos = idx
	}

	if !strings.Contains(body, `"plan_id":"plan-123"`) {
		t.Fatalf("expected plan id in done event:\n%s", body)
	}
	if _, ok := repo.plans["plan-123"]; !ok {
		t.Fatal("expected plan persisted")
	}
}

func TestPlanRejectsInvalidCoordinates(t *testing.T) {
	handler := testPlanHandler(&routing.MockRouteProvider{Segments: routeSegments()}, newFakeRepo())

	body := strings.Replace(validPlanBody, "34.573", "134.573", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Plan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "event:") {
		t.Fatalf("validation failure must not start a stream:\n%s", rec.Body.String())
	}
}

func TestPlanRejectsUnknownFields(t *testing.T) {
	handler := testPlanHandler(&routing.MockRouteProvider{Segments: routeSegments()}, newFakeRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(`{"bogus": true}`))
	rec := httptest.NewRecorder()
	handler.Plan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlanProviderFailureReportedInStream(t *testing.T) {
	boom := &ports.ProviderError{Provider: "routing", StatusCode: 503, Message: "unavailable"}
	handler := testPlanHandler(&routing.MockRouteProvider{Err: boom}, newFakeRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(validPlanBody))
	rec := httptest.NewRecorder()
	handler.Plan(rec, req)

	// Headers are already sent; the failure must arrive in-stream.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Fatalf("expected error event:\n%s", body)
	}
	if !strings.Contains(body, `"status":"error"`) {
		t.Fatalf("expected done event with error status:\n%s", body)
	}
}

func TestPlanMethodNotAllowed(t *testing.T) {
	handler := testPlanHandler(&routing.MockRouteProvider{Segments: routeSegments()}, newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
	rec := httptest.NewRecorder()
	handler.Plan(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
