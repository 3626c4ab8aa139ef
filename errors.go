package tarn

import "errors"

var (
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfigRequired is returned when New is called without a config
	ErrConfigRequired = errors.New("config is required")
	// ErrEndpointRequired is returned when no endpoint is configured
	ErrEndpointRequired = errors.New("endpoint is required")
)

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)
