// Package service contains the application-specific use cases: generating one
// image with a model profile, and inspecting or capturing the state of the
// WebUI server.
//
// Services receive their dependencies through constructor injection. The
// generation.Generator boundary keeps the image use case independent of the
// HTTP client, and the Inspector interface does the same for the read-only
// server queries.
//
// Error handling:
//   - Expected conditions are sentinel errors (see errors.go) or errors of the
//     generation and domain packages, checked with errors.Is
//   - Failures are wrapped in *ServiceError, which names the failing operation
package service
