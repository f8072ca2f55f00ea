package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cycling-route-service/internal/api/handlers"
	"cycling-route-service/internal/platform/metrics"
	"cycling-route-service/internal/ports"
	"cycling-route-service/internal/services"
)

// Dependencies collects everything the HTTP layer needs.
type Dependencies struct {
	Synthesizer *services.Synthesizer
	Repo        ports.PlanRepository
	Weather     ports.WeatherProvider
	Geocoder    ports.Geocoder
	Metrics     *metrics.Collector
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Synthesizer: deps.Synthesizer}
	historyHandler := &handlers.HistoryHandler{Repo: deps.Repo}
	weatherHandler := &handlers.WeatherHandler{Provider: deps.Weather}
	geocodeHandler := &handlers.GeocodeHandler{Geocoder: deps.Geocoder}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/plan", planHandler.Plan)
	mux.HandleFunc("/api/history", historyHandler.List)
	mux.HandleFunc("/api/history/", historyHandler.Get)
	mux.HandleFunc("/api/weather", weatherHandler.Get)
	mux.HandleFunc("/api/geocode", geocodeHandler.Search)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(mux, deps.Metrics)
}
