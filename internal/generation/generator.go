package generation

import (
	"context"
)

// ModelOptions selects the model the backend loads. It is the body of the
// options update sent before generating.
type ModelOptions struct {
	Checkpoint        string   `json:"sd_model_checkpoint"`
	VAE               string   `json:"sd_vae,omitempty"`
	AdditionalModules []string `json:"forge_additional_modules,omitempty"`
}

// Txt2ImgRequest is the text-to-image payload.
type Txt2ImgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps"`
	SamplerName    string  `json:"sampler_name"`
	CFGScale       float64 `json:"cfg_scale"`
	Seed           int64   `json:"seed"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Scheduler      string  `json:"scheduler,omitempty"`

	OverrideSettings                  map[string]any `json:"override_settings,omitempty"`
	OverrideSettingsRestoreAfterwards *bool          `json:"override_settings_restore_afterwards,omitempty"`
}

// Txt2ImgResult is what the backend returned for one request.
type Txt2ImgResult struct {
	// Images holds base64 encoded images; the first is the one that is saved
	Images []string

	// Info is the raw infotext, HasInfo is false when the backend sent none
	Info    string
	HasInfo bool
}

// Generator defines the interface for generating images from text.
// This interface serves as a boundary between the application core and
// the external image backend.
type Generator interface {
	// SetOptions asks the backend to load the given model.
	SetOptions(ctx context.Context, opts ModelOptions) error

	// Txt2Img generates images for the request.
	// Errors wrap ErrGenerationFailed, ErrInvalidResponse or ErrTransientFailure.
	Txt2Img(ctx context.Context, req Txt2ImgRequest) (*Txt2ImgResult, error)
}
