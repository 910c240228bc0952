package webui

import (
	"errors"
	"fmt"
)

// Error definitions for the webui package.
var (
	// ErrInvalidBaseURL is returned when the configured server URL cannot be used.
	ErrInvalidBaseURL = errors.New("invalid WebUI base URL")

	// ErrNoImage is returned when a txt2img response carries no images.
	ErrNoImage = errors.New("response contains no images")
)

// StatusError reports a non-2xx response that was not retried, or that was
// still failing after the last retry.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
