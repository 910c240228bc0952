// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Specific errors below are wrapped with it.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyPrompt is returned when a generation request has no prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyModel is returned when a generation request names no model.
	ErrEmptyModel = errors.New("model cannot be empty")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("width and height must be positive")

	// ErrInvalidSteps is returned when the sampling step count is not positive.
	ErrInvalidSteps = errors.New("steps must be positive")

	// ErrInvalidSeed is returned for seeds below -1. -1 asks for a random seed.
	ErrInvalidSeed = errors.New("seed must be -1 or greater")
)
