package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
var (
	// ErrImageDecode indicates the backend returned image data that is not valid base64.
	ErrImageDecode = errors.New("failed to decode image data")

	// ErrWriteOutput indicates an image, sidecar or capture file could not be written.
	ErrWriteOutput = errors.New("failed to write output file")

	// ErrUnsupportedFormat indicates a capture format other than json or yaml.
	ErrUnsupportedFormat = errors.New("unsupported capture format")
)

// ServiceError is a custom error type for service errors.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewImageServiceError creates a new ServiceError for the image service.
func NewImageServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "image", Operation: operation, Message: message, Err: err}
}

// NewInspectServiceError creates a new ServiceError for the inspect service.
func NewInspectServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "inspect", Operation: operation, Message: message, Err: err}
}
