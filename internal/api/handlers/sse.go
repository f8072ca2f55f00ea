package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/domain"
)

// sseWriter frames server-sent events and flushes after every event so the
// client sees progress while synthesis is still running.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// send frames one event. Payloads are always JSON-encoded, including bare
// token strings, so a chunk containing a newline cannot break the framing.
func (s *sseWriter) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}

// sseEmitter adapts the synthesizer's emitter callbacks to SSE frames.
type sseEmitter struct {
	stream *sseWriter
}

func (e *sseEmitter) RouteData(segments []domain.RouteSegment, totalDistanceKm, totalGainM float64, totalDurationMin int) error {
	return e.stream.send("route_data", dto.RouteDataEvent{
		Segments:            dto.FromSegments(segments),
		TotalDistanceKm:     totalDistanceKm,
		TotalElevationGainM: totalGainM,
		TotalDurationMin:    totalDurationMin,
	})
}

func (e *sseEmitter) Weather(forecasts []domain.WeatherForecast) error {
	return e.stream.send("weather", dto.FromForecasts(forecasts))
}

func (e *sseEmitter) Token(chunk string) error {
	return e.stream.send("token", chunk)
}
