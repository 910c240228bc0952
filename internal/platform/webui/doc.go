// Package webui provides a client for the Stable Diffusion Forge WebUI REST API
// (the /sdapi/v1 endpoints). It implements generation.Generator and exposes the
// read-only endpoints used to inspect a running server.
//
// Key features:
//   - Retries transport errors, 429 and 5xx responses with exponential backoff and jitter
//   - Replays request bodies on every attempt
//   - Reports other non-2xx responses as *StatusError
package webui
