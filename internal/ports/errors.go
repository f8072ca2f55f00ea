package ports

import (
	"errors"
	"fmt"
)

// ErrPlanNotFound is returned by PlanRepository when the requested id does
// not exist.
var ErrPlanNotFound = errors.New("route plan not found")

// ErrNoResult indicates a provider responded successfully but produced no
// usable data (no route found, empty elevation list, no geocode matches).
var ErrNoResult = errors.New("no usable data in provider response")

// ProviderError describes a failed call to an external service. StatusCode is
// zero when the provider was unreachable and non-zero when it responded with
// an HTTP error.
type ProviderError struct {
	Provider   string // routing | elevation | weather | geocoding | narrative
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports malformed or out-of-range request input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
