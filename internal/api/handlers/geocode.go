package handlers

import (
	"errors"
	"log"
	"net/http"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/ports"
)

type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

// Search resolves a free-text place query into candidate locations. The
// country parameter defaults to JP.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	country := q.Get("country")
	if country == "" {
		country = "JP"
	}

	locations, err := h.Geocoder.Geocode(r.Context(), query, country)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNoResult):
			writeError(w, r, http.StatusNotFound, "no locations found")
		default:
			status := errorStatus(err)
			if status >= http.StatusInternalServerError {
				log.Printf("geocode %q failed: %v", query, err)
				writeError(w, r, status, "geocoding service unavailable")
				return
			}
			writeError(w, r, status, err.Error())
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromLocations(locations))
}
