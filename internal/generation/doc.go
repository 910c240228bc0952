// Package generation describes the model profiles images can be generated
// with and the Generator boundary to the image backend.
//
// A Profile holds everything that differs between models: checkpoint, VAE and
// text encoder files, sampler settings, the default negative prompt and how
// long the backend needs to load the model. The Generator interface is
// implemented by the Forge WebUI client in internal/platform/webui.
package generation
