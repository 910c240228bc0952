// Package domain contains the core entities of image generation: the request a
// dispatched task carries and the metadata recorded next to every saved image.
// It is independent of the WebUI transport and of the batch runner.
package domain
