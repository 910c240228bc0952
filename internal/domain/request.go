package domain

import (
	"fmt"
	"strings"
)

// Defaults applied by the generate command when a flag is omitted.
const (
	DefaultSeed      = -1
	DefaultWidth     = 896
	DefaultHeight    = 1152
	DefaultSteps     = 20
	DefaultOutputDir = "."
)

// GenerationRequest is a single text-to-image job, as carried by one queue
// descriptor once it reaches the generate command.
type GenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Seed           int64  `json:"seed"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	OutputDir      string `json:"output_dir"`
}

// NewGenerationRequest returns a request for model and prompt with every other
// field at its default.
func NewGenerationRequest(model, prompt string) *GenerationRequest {
	return &GenerationRequest{
		Model:     model,
		Prompt:    prompt,
		Seed:      DefaultSeed,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Steps:     DefaultSteps,
		OutputDir: DefaultOutputDir,
	}
}

// Validate checks if the GenerationRequest has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyModel)
	}

	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPrompt)
	}

	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %w (got %dx%d)", ErrValidation, ErrInvalidDimensions, r.Width, r.Height)
	}

	if r.Steps <= 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidSteps, r.Steps)
	}

	if r.Seed < -1 {
		return fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidSeed, r.Seed)
	}

	return nil
}

// OutputDirOrDefault returns the output directory, "." when unset.
func (r *GenerationRequest) OutputDirOrDefault() string {
	if r.OutputDir == "" {
		return DefaultOutputDir
	}
	return r.OutputDir
}
