package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/services"
)

type PlanHandler struct {
	Synthesizer *services.Synthesizer
}

// Plan synthesizes a route plan and streams progress as server-sent events:
// route_data, weather, token (repeated), then done. Validation failures are
// rejected as plain JSON errors before the stream starts; failures after that
// are reported in-stream as an error event followed by done.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	departure := time.Now().UTC()
	if req.DepartureTime != nil {
		departure = req.DepartureTime.UTC()
	}

	input := services.PlanInput{
		Origin: domain.Location{
			Coordinate: domain.Coordinate{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
			Name:       req.Origin.Name,
		},
		Destination: domain.Location{
			Coordinate: domain.Coordinate{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
			Name:       req.Destination.Name,
		},
		Preferences: domain.RoutePreferences{
			Difficulty:        req.Preferences.Difficulty,
			AvoidTraffic:      req.Preferences.AvoidTraffic,
			PreferScenic:      req.Preferences.PreferScenic,
			MaxDistanceKm:     req.Preferences.MaxDistanceKm,
			MaxElevationGainM: req.Preferences.MaxElevationGainM,
		},
		DepartureTime: departure,
	}

	if err := input.Origin.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "origin: "+err.Error())
		return
	}
	if err := input.Destination.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "destination: "+err.Error())
		return
	}
	if err := input.Preferences.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, "preferences: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable proxy buffering so events reach the client as they are written.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := &sseWriter{w: w, flusher: flusher}

	plan, err := h.Synthesizer.Plan(r.Context(), input, &sseEmitter{stream: stream})
	if err != nil {
		log.Printf("plan synthesis failed: %v", err)
		_ = stream.send("error", map[string]string{"message": err.Error()})
		_ = stream.send("done", map[string]string{"status": "error"})
		return
	}

	if err := stream.send("done", map[string]string{"status": "complete", "plan_id": plan.ID}); err != nil {
		log.Printf("plan stream close failed: %v", err)
	}
}
