package generation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/phrazzld/forgebatch/internal/domain"
)

// ImageTimestampLayout stamps generated image file names.
const ImageTimestampLayout = "20060102_150405"

// Profile is the fixed configuration of one supported model.
type Profile struct {
	Name string

	// CheckpointFile lives under <models dir>/Stable-diffusion
	CheckpointFile string
	CheckpointHash string

	// VAE and AdditionalModules are relative to the models directory
	VAE               string
	AdditionalModules []string

	// VerifyFiles enables the existence check of checkpoint, VAE and modules
	VerifyFiles bool

	Sampler         string
	Scheduler       string
	CFGScale        float64
	DefaultNegative string

	// Flux pins its text encoder settings on every request
	PinOverrides bool

	LoadWait   time.Duration
	FilePrefix string
}

var profiles = map[string]Profile{
	"flux": {
		Name:              "flux",
		CheckpointFile:    "flux1-schnell-bnb-nf4.safetensors",
		CheckpointHash:    "7d3d1873",
		VAE:               filepath.Join("VAE", "ae.safetensors"),
		AdditionalModules: []string{filepath.Join("text_encoder", "clip_l.safetensors"), filepath.Join("text_encoder", "t5xxl_fp16.safetensors")},
		VerifyFiles:       true,
		Sampler:           "Euler",
		Scheduler:         "Simple",
		CFGScale:          1.0,
		DefaultNegative:   "blurry, dark, low quality",
		PinOverrides:      true,
		LoadWait:          20 * time.Second,
		FilePrefix:        "flux_image",
	},
	"jugger": {
		Name:           "jugger",
		CheckpointFile: "juggernautXL_v8Rundiffusion.safetensors",
		VAE:            filepath.Join("VAE", "ae.safetensors"),
		VerifyFiles:    true,
		Sampler:        "Euler",
		CFGScale:       7,
		LoadWait:       10 * time.Second,
		FilePrefix:     "jugger_image",
	},
	"realistic": {
		Name:           "realistic",
		CheckpointFile: "realisticStockPhoto_v20.safetensors",
		CheckpointHash: "ac300751f3",
		Sampler:        "Euler",
		CFGScale:       7,
		LoadWait:       5 * time.Second,
		FilePrefix:     "realistic_image",
	},
}

// Lookup returns the profile registered under name.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownModel, name, Names())
	}
	return p, nil
}

// Names lists the registered model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckpointName is the checkpoint as the backend names it: "file [hash]", or
// just the file when the hash is unknown.
func (p Profile) CheckpointName() string {
	if p.CheckpointHash == "" {
		return p.CheckpointFile
	}
	return fmt.Sprintf("%s [%s]", p.CheckpointFile, p.CheckpointHash)
}

// RequiredFiles returns the absolute paths that must exist before generating.
func (p Profile) RequiredFiles(modelsDir string) []string {
	if !p.VerifyFiles {
		return nil
	}
	files := []string{filepath.Join(modelsDir, "Stable-diffusion", p.CheckpointFile)}
	if p.VAE != "" {
		files = append(files, filepath.Join(modelsDir, p.VAE))
	}
	for _, m := range p.AdditionalModules {
		files = append(files, filepath.Join(modelsDir, m))
	}
	return files
}

// VerifyModelFiles checks that every required file exists under modelsDir.
func (p Profile) VerifyModelFiles(modelsDir string) error {
	if !p.VerifyFiles {
		return nil
	}
	if modelsDir == "" {
		return fmt.Errorf("%w: required by model %q", ErrModelsDirNotSet, p.Name)
	}

	for _, path := range p.RequiredFiles(modelsDir) {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrMissingModelFile, path)
			}
			return fmt.Errorf("failed to check model file %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrMissingModelFile, path)
		}
	}
	return nil
}

// Options returns the options update that loads this model.
func (p Profile) Options(modelsDir string) ModelOptions {
	opts := ModelOptions{Checkpoint: p.CheckpointName()}
	if p.VAE != "" {
		opts.VAE = filepath.Join(modelsDir, p.VAE)
	}
	for _, m := range p.AdditionalModules {
		opts.AdditionalModules = append(opts.AdditionalModules, filepath.Join(modelsDir, m))
	}
	return opts
}

// NegativePrompt returns the negative prompt sent for req.
func (p Profile) NegativePrompt(req *domain.GenerationRequest) string {
	if req.NegativePrompt != "" {
		return req.NegativePrompt
	}
	return p.DefaultNegative
}

// Txt2Img builds the text-to-image payload for req.
func (p Profile) Txt2Img(req *domain.GenerationRequest, modelsDir string) Txt2ImgRequest {
	payload := Txt2ImgRequest{
		Prompt:         req.Prompt,
		NegativePrompt: p.NegativePrompt(req),
		Steps:          req.Steps,
		SamplerName:    p.Sampler,
		CFGScale:       p.CFGScale,
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		Scheduler:      p.Scheduler,
	}

	if p.PinOverrides {
		restore := false
		payload.OverrideSettings = map[string]any{
			"CLIP_stop_at_last_layers": 1,
			"sd_vae_overrides":         filepath.Join(modelsDir, p.VAE),
			"unet_substitute":          "default",
		}
		payload.OverrideSettingsRestoreAfterwards = &restore
	}

	return payload
}

// ImageFileName names the image generated at now.
func (p Profile) ImageFileName(now time.Time) string {
	return fmt.Sprintf("%s_%s.png", p.FilePrefix, now.Format(ImageTimestampLayout))
}

// Metadata describes an image generated for req.
func (p Profile) Metadata(req *domain.GenerationRequest, modelsDir string, result *Txt2ImgResult, now time.Time) domain.ImageMetadata {
	meta := domain.ImageMetadata{
		Prompt:         req.Prompt,
		NegativePrompt: p.NegativePrompt(req),
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		Scheduler:      p.Scheduler,
		Sampler:        p.Sampler,
		Model:          p.CheckpointName(),
		Date:           now,
	}
	if p.PinOverrides {
		meta.VAE = filepath.Join(modelsDir, p.VAE)
	}
	if result != nil {
		meta.Info = result.Info
		meta.HasInfo = result.HasInfo
	}
	return meta
}
