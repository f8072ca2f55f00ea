// Package narrative generates rider-facing route descriptions, either via the
// Anthropic Messages API or a deterministic local template.
package narrative

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cycling-route-service/internal/platform/obs"
	"cycling-route-service/internal/ports"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-5-20250929"
	anthropicVersion = "2023-06-01"
	maxTokens        = 2048
)

// AnthropicGenerator streams a route narrative token by token from the
// Anthropic Messages API.
type AnthropicGenerator struct {
	// No client timeout: a streaming response lives as long as the model
	// keeps producing tokens. Cancellation comes from the request context.
	session *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewAnthropicGenerator(apiKey string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is empty")
	}

	return &AnthropicGenerator{
		session: &http.Client{},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// Stream sends the route context to the model and forwards each text delta to
// emit as it arrives.
func (a *AnthropicGenerator) Stream(
	ctx context.Context,
	req ports.NarrativeRequest,
	emit func(chunk string) error,
) (err error) {
	defer obs.Time(ctx, "anthropic.Stream")(&err)

	payload := messagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Stream:    true,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: buildUserPrompt(req)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal messages request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create messages request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.session.Do(httpReq)
	if err != nil {
		return &ports.ProviderError{Provider: "narrative", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &ports.ProviderError{
			Provider:   "narrative",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(b)),
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}
		if event.Type != "content_block_delta" || event.Delta.Type != "text_delta" {
			continue
		}
		if err := emit(event.Delta.Text); err != nil {
			return fmt.Errorf("emit narrative chunk: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read narrative stream: %w", err)
	}

	return nil
}

const systemPrompt = `You are an experienced cycling coach writing a route briefing. ` +
	`Given route statistics and a weather outlook, write a concise, practical ` +
	`narrative for the rider: what the ride feels like, where the hard parts are, ` +
	`how the weather will affect it, and how to pace it. Plain prose, no headings, ` +
	`at most four short paragraphs.`

func buildUserPrompt(req ports.NarrativeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Route: %.1f km, %.0f m total climbing, %d segments, difficulty preference %q.\n",
		req.TotalDistanceKm, req.TotalElevationGainM, len(req.Segments), req.Difficulty)

	for i, s := range req.Segments {
		fmt.Fprintf(&b, "Segment %d: %.1f km, +%.0f m / -%.0f m, about %d min, %s surface.\n",
			i+1, s.DistanceKm, s.ElevationGainM, s.ElevationLossM, s.EstimatedDurationMin, s.Surface)
	}

	if len(req.Forecasts) == 0 {
		b.WriteString("Weather outlook: unavailable.\n")
		return b.String()
	}

	b.WriteString("Weather outlook:\n")
	const maxLines = 5
	for i, f := range req.Forecasts {
		if i == maxLines {
			fmt.Fprintf(&b, "... and %d more hourly points.\n", len(req.Forecasts)-maxLines)
			break
		}
		fmt.Fprintf(&b, "%s: %.1f°C, wind %.1f m/s, precipitation %.0f%%, %s.\n",
			f.Time.Format("15:04"), f.TemperatureC, f.WindSpeedMS, f.PrecipitationProbability, f.Description)
	}

	return b.String()
}
