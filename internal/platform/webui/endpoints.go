package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phrazzld/forgebatch/internal/generation"
)

// API paths of the endpoints the client uses.
const (
	PathOptions      = "/sdapi/v1/options"
	PathTxt2Img      = "/sdapi/v1/txt2img"
	PathSamplers     = "/sdapi/v1/samplers"
	PathSDModels     = "/sdapi/v1/sd-models"
	PathForgeVersion = "/sdapi/v1/forge/version"
	PathProgress     = "/sdapi/v1/progress"
)

// Client must satisfy the generation boundary
var _ generation.Generator = (*Client)(nil)

// SetOptions implements generation.Generator.
func (c *Client) SetOptions(ctx context.Context, opts generation.ModelOptions) error {
	if err := c.postJSON(ctx, PathOptions, opts, nil, true); err != nil {
		return fmt.Errorf("failed to set model options: %w", err)
	}
	c.logger.InfoContext(ctx, "model options updated", "checkpoint", opts.Checkpoint)
	return nil
}

// Txt2Img implements generation.Generator.
func (c *Client) Txt2Img(ctx context.Context, req generation.Txt2ImgRequest) (*generation.Txt2ImgResult, error) {
	var resp txt2imgResponse
	if err := c.postJSON(ctx, PathTxt2Img, req, &resp, false); err != nil {
		if errors.Is(err, generation.ErrTransientFailure) || errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	if len(resp.Images) == 0 {
		return nil, fmt.Errorf("%w: %w", generation.ErrInvalidResponse, ErrNoImage)
	}

	result := &generation.Txt2ImgResult{Images: resp.Images}
	if len(resp.Info) > 0 && string(resp.Info) != "null" {
		result.HasInfo = true
		var info string
		if err := json.Unmarshal(resp.Info, &info); err == nil {
			result.Info = info
		} else {
			// Not a string; keep the raw JSON
			result.Info = string(resp.Info)
		}
	}
	return result, nil
}

// Options returns every current server option.
func (c *Client) Options(ctx context.Context) (map[string]any, error) {
	var opts map[string]any
	if err := c.getJSON(ctx, PathOptions, &opts); err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}
	return opts, nil
}

// Txt2ImgDefaults returns what the server answers to a GET on the txt2img
// endpoint. Not every server version supports it.
func (c *Client) Txt2ImgDefaults(ctx context.Context) (map[string]any, error) {
	var params map[string]any
	if err := c.getJSON(ctx, PathTxt2Img, &params); err != nil {
		return nil, fmt.Errorf("failed to get txt2img parameters: %w", err)
	}
	return params, nil
}

// Samplers lists the available samplers.
func (c *Client) Samplers(ctx context.Context) ([]Sampler, error) {
	var samplers []Sampler
	if err := c.getJSON(ctx, PathSamplers, &samplers); err != nil {
		return nil, fmt.Errorf("failed to get samplers: %w", err)
	}
	return samplers, nil
}

// SDModels lists the available checkpoints.
func (c *Client) SDModels(ctx context.Context) ([]SDModel, error) {
	var models []SDModel
	if err := c.getJSON(ctx, PathSDModels, &models); err != nil {
		return nil, fmt.Errorf("failed to get models: %w", err)
	}
	return models, nil
}

// ForgeVersion returns the Forge version document. Servers that are not Forge
// answer with a *StatusError.
func (c *Client) ForgeVersion(ctx context.Context) (any, error) {
	var version any
	if err := c.getJSON(ctx, PathForgeVersion, &version); err != nil {
		return nil, fmt.Errorf("failed to get forge version: %w", err)
	}
	return version, nil
}

// Progress returns the state of the current generation, if any.
func (c *Client) Progress(ctx context.Context) (*Progress, error) {
	var progress Progress
	if err := c.getJSON(ctx, PathProgress, &progress); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}
