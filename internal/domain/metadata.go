package domain

import (
	"fmt"
	"strings"
	"time"
)

// MetadataDateLayout is the timestamp layout of the Date line in a sidecar.
const MetadataDateLayout = "2006-01-02T15:04:05.000000"

// ImageMetadata describes how a saved image was produced. It is written as a
// "<image name>_meta.txt" sidecar next to the image.
type ImageMetadata struct {
	Prompt         string
	NegativePrompt string
	Seed           int64
	Width          int
	Height         int
	Steps          int
	// Scheduler and VAE are only recorded for profiles that set them
	Scheduler string
	Sampler   string
	VAE       string
	Model     string
	Date      time.Time

	// Info is the raw infotext returned by the WebUI, if any
	Info    string
	HasInfo bool
}

// Render returns the sidecar text.
func (m ImageMetadata) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Prompt: %s\n", m.Prompt)
	fmt.Fprintf(&b, "Negative Prompt: %s\n", m.NegativePrompt)
	fmt.Fprintf(&b, "Seed: %d\n", m.Seed)
	fmt.Fprintf(&b, "Width: %d\n", m.Width)
	fmt.Fprintf(&b, "Height: %d\n", m.Height)
	fmt.Fprintf(&b, "Steps: %d\n", m.Steps)
	if m.Scheduler != "" {
		fmt.Fprintf(&b, "Scheduler: %s\n", m.Scheduler)
	}
	fmt.Fprintf(&b, "Sampler: %s\n", m.Sampler)
	if m.VAE != "" {
		fmt.Fprintf(&b, "VAE: %s\n", m.VAE)
	}
	fmt.Fprintf(&b, "Model: %s\n", m.Model)
	fmt.Fprintf(&b, "Date: %s\n", m.Date.Format(MetadataDateLayout))

	if m.HasInfo {
		b.WriteString("\n[API Info/Metadata]\n")
		b.WriteString(m.Info)
		b.WriteString("\n")
	}

	return b.String()
}

// MetadataFileName returns the sidecar name for an image file name.
func MetadataFileName(imageName string) string {
	if i := strings.LastIndex(imageName, "."); i > 0 {
		imageName = imageName[:i]
	}
	return imageName + "_meta.txt"
}
