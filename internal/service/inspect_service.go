package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phrazzld/forgebatch/internal/platform/logger"
	"github.com/phrazzld/forgebatch/internal/platform/webui"
	"gopkg.in/yaml.v3"
)

// Capture formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// captureTimestampLayout stamps captured file names.
const captureTimestampLayout = "20060102_150405"

// keyTxt2ImgParams are the txt2img parameters echoed after a capture.
var keyTxt2ImgParams = []string{
	"prompt", "negative_prompt", "steps", "sampler_name",
	"sampler_index", "cfg_scale", "denoising_strength",
}

// Inspector is the read-only view of a WebUI server.
type Inspector interface {
	Samplers(ctx context.Context) ([]webui.Sampler, error)
	SDModels(ctx context.Context) ([]webui.SDModel, error)
	Options(ctx context.Context) (map[string]any, error)
	Txt2ImgDefaults(ctx context.Context) (map[string]any, error)
	ForgeVersion(ctx context.Context) (any, error)
	Progress(ctx context.Context) (*webui.Progress, error)
}

// CurrentModel is the model selection found in the server options.
type CurrentModel struct {
	Checkpoint        string
	VAE               string
	AdditionalModules any
	HasModules        bool
}

// Report is the outcome of inspecting a server. Each section carries its own
// error so one failing endpoint does not hide the others.
type Report struct {
	Samplers    []webui.Sampler
	SamplersErr error

	Models    []webui.SDModel
	ModelsErr error

	CurrentModel    *CurrentModel
	CurrentModelErr error

	ForgeStatus string
}

// CaptureResult lists what a capture fetched and wrote.
type CaptureResult struct {
	OptionsFile string
	ParamsFile  string

	// ModelInfo summarizes the captured options
	ModelInfo map[string]any
	// KeyParams is the subset of txt2img parameters worth comparing
	KeyParams map[string]any

	OptionsErr error
	ParamsErr  error

	Progress    *webui.Progress
	ProgressErr error
}

// InProgress reports whether the server was generating when captured.
func (r *CaptureResult) InProgress() bool {
	return r.Progress != nil && r.Progress.Progress > 0
}

// InspectService reports on and captures the configuration of a WebUI server
type InspectService interface {
	// Report queries samplers, models, the current model and Forge status.
	Report(ctx context.Context) *Report

	// Capture writes the server options and txt2img parameters to timestamped
	// files in dir, encoded as format (json or yaml).
	Capture(ctx context.Context, dir, format string) (*CaptureResult, error)
}

// inspectServiceImpl implements the InspectService interface
type inspectServiceImpl struct {
	inspector Inspector
	logger    *slog.Logger
	now       func() time.Time
}

// NewInspectService creates a new InspectService
func NewInspectService(inspector Inspector, logger *slog.Logger) (InspectService, error) {
	if inspector == nil {
		return nil, fmt.Errorf("inspector cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &inspectServiceImpl{
		inspector: inspector,
		logger:    logger.With(slog.String("component", "inspect_service")),
		now:       time.Now,
	}, nil
}

// Report implements InspectService.Report
func (s *inspectServiceImpl) Report(ctx context.Context) *Report {
	log := logger.FromContextOrDefault(ctx, s.logger)
	report := &Report{}

	report.Samplers, report.SamplersErr = s.inspector.Samplers(ctx)
	report.Models, report.ModelsErr = s.inspector.SDModels(ctx)

	opts, err := s.inspector.Options(ctx)
	if err != nil {
		report.CurrentModelErr = err
	} else {
		report.CurrentModel = currentModel(opts)
	}

	version, err := s.inspector.ForgeVersion(ctx)
	switch {
	case err == nil:
		report.ForgeStatus = fmt.Sprintf("Forge WebUI detected: %v", version)
	case isStatusError(err):
		report.ForgeStatus = "Not using Forge WebUI or endpoint not available"
	default:
		report.ForgeStatus = fmt.Sprintf("Couldn't determine Forge status: %v", err)
	}

	log.Debug("server report collected",
		slog.Int("sampler_count", len(report.Samplers)),
		slog.Int("model_count", len(report.Models)))
	return report
}

// Capture implements InspectService.Capture
func (s *inspectServiceImpl) Capture(ctx context.Context, dir, format string) (*CaptureResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatYAML {
		return nil, NewInspectServiceError("capture", "invalid format",
			fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewInspectServiceError("capture", "failed to create directory",
			fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	timestamp := s.now().Format(captureTimestampLayout)
	result := &CaptureResult{}

	opts, err := s.inspector.Options(ctx)
	switch {
	case err != nil:
		result.OptionsErr = err
		log.Warn("failed to fetch options", slog.String("error", err.Error()))
	case len(opts) > 0:
		model := currentModel(opts)
		result.ModelInfo = map[string]any{
			"current_model": model.Checkpoint,
			"current_vae":   model.VAE,
		}
		if model.HasModules {
			result.ModelInfo["additional_modules"] = model.AdditionalModules
		}

		path := filepath.Join(dir, fmt.Sprintf("webui_options_%s.%s", timestamp, format))
		if err := writeEncoded(path, format, opts); err != nil {
			return nil, NewInspectServiceError("capture", "failed to save options", err)
		}
		result.OptionsFile = path
	}

	params, err := s.inspector.Txt2ImgDefaults(ctx)
	switch {
	case err != nil:
		result.ParamsErr = err
		log.Warn("failed to fetch txt2img parameters", slog.String("error", err.Error()))
	case len(params) > 0:
		path := filepath.Join(dir, fmt.Sprintf("txt2img_params_%s.%s", timestamp, format))
		if err := writeEncoded(path, format, params); err != nil {
			return nil, NewInspectServiceError("capture", "failed to save txt2img parameters", err)
		}
		result.ParamsFile = path

		result.KeyParams = make(map[string]any)
		for _, key := range keyTxt2ImgParams {
			if v, ok := params[key]; ok {
				result.KeyParams[key] = v
			}
		}
	}

	result.Progress, result.ProgressErr = s.inspector.Progress(ctx)

	log.Info("configuration captured",
		slog.String("options_file", result.OptionsFile),
		slog.String("params_file", result.ParamsFile))
	return result, nil
}

// Encode renders v as indented JSON or as YAML.
func Encode(format string, v any) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeEncoded(path, format string, v any) error {
	data, err := Encode(format, v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

func currentModel(opts map[string]any) *CurrentModel {
	model := &CurrentModel{
		Checkpoint: stringOr(opts["sd_model_checkpoint"], "unknown"),
		VAE:        stringOr(opts["sd_vae"], "unknown"),
	}
	model.AdditionalModules, model.HasModules = opts["forge_additional_modules"]
	return model
}

func stringOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isStatusError(err error) bool {
	var statusErr *webui.StatusError
	return errors.As(err, &statusErr)
}

// Render writes the report in the plain-text layout of the info command.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder

	b.WriteString("=== WebUI API Information Tool ===\n")

	if r.SamplersErr != nil {
		fmt.Fprintf(&b, "Error getting samplers: %v\n", r.SamplersErr)
	} else if len(r.Samplers) > 0 {
		b.WriteString("\n=== Available Samplers ===\n")
		for _, sampler := range r.Samplers {
			name := sampler.Name
			if name == "" {
				name = "Unknown"
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	b.WriteString("\n=== Available Models ===\n")
	if r.ModelsErr != nil {
		fmt.Fprintf(&b, "Error getting models: %v\n", r.ModelsErr)
	}
	for _, model := range r.Models {
		fmt.Fprintf(&b, "- %s\n", model.DisplayName())
	}

	b.WriteString("\n=== Current Model Information ===\n")
	if r.CurrentModelErr != nil {
		fmt.Fprintf(&b, "Error getting model info: %v\n", r.CurrentModelErr)
	} else if r.CurrentModel != nil {
		fmt.Fprintf(&b, "sd_model_checkpoint: %s\n", r.CurrentModel.Checkpoint)
		fmt.Fprintf(&b, "sd_vae: %s\n", r.CurrentModel.VAE)
		if r.CurrentModel.HasModules {
			fmt.Fprintf(&b, "forge_additional_modules: %v\n", r.CurrentModel.AdditionalModules)
		}
	}

	b.WriteString("\n=== Forge Status ===\n")
	b.WriteString(r.ForgeStatus)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
