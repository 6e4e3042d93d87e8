package providers

import "errors"

var (
	// ErrNotConfigured indicates the provider credential is missing from configuration.
	ErrNotConfigured = errors.New("providers: not configured")
	// ErrUpstream indicates the provider call failed or returned an unusable payload.
	ErrUpstream = errors.New("providers: upstream failure")
)
