package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/forgebatch/internal/domain"
	"github.com/phrazzld/forgebatch/internal/generation"
	"github.com/phrazzld/forgebatch/internal/platform/logger"
)

// GeneratedImage describes the files written for one request.
type GeneratedImage struct {
	Model        string
	ImagePath    string
	MetadataPath string
	Metadata     domain.ImageMetadata

	// ParsedInfo is the infotext decoded as JSON. InfoParseErr is set when the
	// backend sent infotext that is not a JSON object.
	ParsedInfo   map[string]any
	InfoParseErr error
}

// ImageService provides image generation
type ImageService interface {
	// Generate loads the request's model on the backend, generates one image and
	// saves it with its metadata sidecar in the request's output directory.
	Generate(ctx context.Context, req *domain.GenerationRequest) (*GeneratedImage, error)
}

// ImageServiceOption customizes the image service.
type ImageServiceOption func(*imageServiceImpl)

// WithClock replaces the clock used to name and date output files.
func WithClock(now func() time.Time) ImageServiceOption {
	return func(s *imageServiceImpl) {
		s.now = now
	}
}

// WithSleep replaces the wait performed while the backend loads a model.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ImageServiceOption {
	return func(s *imageServiceImpl) {
		s.sleep = sleep
	}
}

// WithLoadWait overrides every profile's model load wait. Negative values keep
// the profile default.
func WithLoadWait(d time.Duration) ImageServiceOption {
	return func(s *imageServiceImpl) {
		s.loadWait = d
	}
}

// imageServiceImpl implements the ImageService interface
type imageServiceImpl struct {
	generator generation.Generator
	modelsDir string
	loadWait  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewImageService creates a new ImageService
// It returns an error if the generator is nil.
func NewImageService(
	generator generation.Generator,
	modelsDir string,
	logger *slog.Logger,
	opts ...ImageServiceOption,
) (ImageService, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", domain.ErrValidation)
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &imageServiceImpl{
		generator: generator,
		modelsDir: modelsDir,
		loadWait:  -1,
		logger:    logger.With(slog.String("component", "image_service")),
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate implements ImageService.Generate
func (s *imageServiceImpl) Generate(ctx context.Context, req *domain.GenerationRequest) (*GeneratedImage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req == nil {
		return nil, NewImageServiceError("generate", "invalid request", domain.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, NewImageServiceError("generate", "invalid request", err)
	}

	profile, err := generation.Lookup(req.Model)
	if err != nil {
		return nil, NewImageServiceError("generate", "unknown model", err)
	}
	log = log.With(slog.String("model", profile.Name))

	if err := profile.VerifyModelFiles(s.modelsDir); err != nil {
		log.Error("model files not available", slog.String("error", err.Error()))
		return nil, NewImageServiceError("generate", "model files not available", err)
	}

	opts := profile.Options(s.modelsDir)
	if err := s.generator.SetOptions(ctx, opts); err != nil {
		log.Error("failed to select model", slog.String("error", err.Error()))
		return nil, NewImageServiceError("generate", "failed to select model", err)
	}

	wait := profile.LoadWait
	if s.loadWait >= 0 {
		wait = s.loadWait
	}
	log.Info("waiting for model to load",
		slog.String("checkpoint", opts.Checkpoint),
		slog.Duration("wait", wait))
	if err := s.sleep(ctx, wait); err != nil {
		return nil, NewImageServiceError("generate", "interrupted while model loads", err)
	}

	payload := profile.Txt2Img(req, s.modelsDir)
	log.Debug("sending txt2img request",
		slog.Int("steps", payload.Steps),
		slog.Int("width", payload.Width),
		slog.Int("height", payload.Height),
		slog.Int64("seed", payload.Seed))

	result, err := s.generator.Txt2Img(ctx, payload)
	if err != nil {
		log.Error("image generation failed", slog.String("error", err.Error()))
		return nil, NewImageServiceError("generate", "image generation failed", err)
	}
	if len(result.Images) == 0 {
		return nil, NewImageServiceError("generate", "no image returned", generation.ErrInvalidResponse)
	}

	data, err := base64.StdEncoding.DecodeString(result.Images[0])
	if err != nil {
		return nil, NewImageServiceError("generate", "invalid image data", fmt.Errorf("%w: %w", ErrImageDecode, err))
	}

	now := s.now()
	outDir := req.OutputDirOrDefault()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, NewImageServiceError("generate", "failed to create output directory",
			fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	imageName := profile.ImageFileName(now)
	image := &GeneratedImage{
		Model:        profile.Name,
		ImagePath:    filepath.Join(outDir, imageName),
		MetadataPath: filepath.Join(outDir, domain.MetadataFileName(imageName)),
		Metadata:     profile.Metadata(req, s.modelsDir, result, now),
	}

	if err := os.WriteFile(image.ImagePath, data, 0o644); err != nil {
		return nil, NewImageServiceError("generate", "failed to save image",
			fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}
	if err := os.WriteFile(image.MetadataPath, []byte(image.Metadata.Render()), 0o644); err != nil {
		return nil, NewImageServiceError("generate", "failed to save metadata",
			fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	if result.HasInfo {
		image.ParsedInfo, image.InfoParseErr = parseInfotext(result.Info)
		if image.InfoParseErr != nil {
			log.Warn("failed to parse infotext", slog.String("error", image.InfoParseErr.Error()))
		}
	}

	log.Info("image saved",
		slog.String("image_path", image.ImagePath),
		slog.String("metadata_path", image.MetadataPath))
	return image, nil
}

// parseInfotext decodes infotext as a JSON object.
func parseInfotext(info string) (map[string]any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(info), &parsed); err != nil {
		return nil, fmt.Errorf("%w: infotext is not a JSON object: %w", generation.ErrInvalidResponse, err)
	}
	if parsed == nil {
		return nil, errors.New("infotext is null")
	}
	return parsed, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
