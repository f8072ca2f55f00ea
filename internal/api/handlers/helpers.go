package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cycling-route-service/internal/ports"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// errorStatus maps port-level errors onto HTTP status codes: invalid input is
// the client's fault, empty provider results read as not found, and any other
// provider failure is a bad gateway.
func errorStatus(err error) int {
	var ve *ports.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ports.ErrPlanNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ports.ErrNoResult) {
		return http.StatusNotFound
	}
	var pe *ports.ProviderError
	if errors.As(err, &pe) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
