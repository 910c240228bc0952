package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when image generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate image")

	// ErrInvalidResponse is returned when the backend response cannot be parsed or has no image
	ErrInvalidResponse = errors.New("invalid response from image backend")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during image generation")

	// ErrUnknownModel is returned when a model name has no profile
	ErrUnknownModel = errors.New("unknown model")

	// ErrModelsDirNotSet is returned when a profile needs model files but no models directory is configured
	ErrModelsDirNotSet = errors.New("models directory not set")

	// ErrMissingModelFile is returned when a file a profile requires is absent
	ErrMissingModelFile = errors.New("missing required model file")
)
