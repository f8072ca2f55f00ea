package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

type WeatherHandler struct {
	Provider ports.WeatherProvider
}

// Get returns a 24-hour forecast for one point, mainly for pre-ride checks in
// the frontend.
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "lng must be a number")
		return
	}

	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if err := coord.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now().UTC()
	if raw := q.Get("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD or RFC3339")
			return
		}
		start = parsed
	}

	forecasts, err := h.Provider.GetForecast(r.Context(), domain.Location{Coordinate: coord}, start, 24)
	if err != nil {
		log.Printf("weather lookup failed: %v", err)
		writeError(w, r, errorStatus(err), "weather service unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromForecasts(forecasts))
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
