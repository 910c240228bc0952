package webui

import "encoding/json"

// Sampler is one entry of GET /sdapi/v1/samplers.
type Sampler struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// SDModel is one entry of GET /sdapi/v1/sd-models.
type SDModel struct {
	Title     string `json:"title"`
	ModelName string `json:"model_name"`
	Hash      string `json:"hash,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// DisplayName is the title, falling back to the model name.
func (m SDModel) DisplayName() string {
	if m.Title != "" {
		return m.Title
	}
	if m.ModelName != "" {
		return m.ModelName
	}
	return "Unknown"
}

// Progress is the response of GET /sdapi/v1/progress.
type Progress struct {
	Progress    float64        `json:"progress" yaml:"progress"`
	ETARelative float64        `json:"eta_relative" yaml:"eta_relative"`
	State       map[string]any `json:"state,omitempty" yaml:"state,omitempty"`
	TextInfo    string         `json:"textinfo,omitempty" yaml:"textinfo,omitempty"`
}

// txt2imgResponse is the response of POST /sdapi/v1/txt2img. Info is normally
// a JSON document encoded as a string.
type txt2imgResponse struct {
	Images []string        `json:"images"`
	Info   json.RawMessage `json:"info"`
}
