package narrative

import (
	"context"
	"fmt"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

// TemplateGenerator produces a deterministic narrative without any external
// call. It backs deployments without an Anthropic key and the test suite.
type TemplateGenerator struct{}

func (TemplateGenerator) Stream(
	ctx context.Context,
	req ports.NarrativeRequest,
	emit func(chunk string) error,
) error {
	for _, chunk := range buildTemplateChunks(req) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(chunk); err != nil {
			return fmt.Errorf("emit narrative chunk: %w", err)
		}
	}
	return nil
}

func buildTemplateChunks(req ports.NarrativeRequest) []string {
	chunks := []string{
		fmt.Sprintf("This %.1f km ride climbs %.0f m in total across %d segments. ",
			req.TotalDistanceKm, req.TotalElevationGainM, len(req.Segments)),
	}

	var unpavedKm, totalKm float64
	for _, s := range req.Segments {
		totalKm += s.DistanceKm
		if s.Surface.Unpaved() {
			unpavedKm += s.DistanceKm
		}
	}
	if unpavedKm > 0 && totalKm > 0 {
		chunks = append(chunks, fmt.Sprintf("Around %.0f%% of the distance is unpaved, so pick tires accordingly. ",
			unpavedKm/totalKm*100))
	}

	if len(req.Forecasts) > 0 {
		first := req.Forecasts[0]
		chunks = append(chunks, fmt.Sprintf("Conditions at the start: %.1f°C with %.1f m/s wind, %s. ",
			first.TemperatureC, first.WindSpeedMS, first.Description))
	} else {
		chunks = append(chunks, "No weather outlook is available for this ride; check conditions before you leave. ")
	}

	switch req.Difficulty {
	case domain.DifficultyEasy:
		chunks = append(chunks, "Keep the effort conversational and take breaks whenever you feel like it.")
	case domain.DifficultyHard:
		chunks = append(chunks, "Pace the climbs from the bottom and keep eating on the flats; this route rewards discipline.")
	default:
		chunks = append(chunks, "Ride at a steady endurance pace and refuel roughly every hour.")
	}

	return chunks
}
