// Package ml resolves trained models and talks to the model-serving endpoint.
package ml

import "errors"

var (
	// ErrModelServiceUnavailable indicates the model service is unreachable
	ErrModelServiceUnavailable = errors.New("model service unavailable")

	// ErrInvalidResponse indicates the model service answered with an unusable body
	ErrInvalidResponse = errors.New("invalid response from model service")

	// ErrCircuitOpen indicates requests are refused after repeated failures
	ErrCircuitOpen = errors.New("model service circuit breaker open")

	// ErrNoModelService indicates no model-serving URL is configured
	ErrNoModelService = errors.New("model service url is not configured")
)
