package mocks

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/phrazzld/forgebatch/internal/generation"
)

var _ generation.Generator = (*MockGenerator)(nil)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// SetOptionsFn allows test cases to mock the SetOptions behavior
	SetOptionsFn func(ctx context.Context, opts generation.ModelOptions) error

	// Txt2ImgFn allows test cases to mock the Txt2Img behavior
	Txt2ImgFn func(ctx context.Context, req generation.Txt2ImgRequest) (*generation.Txt2ImgResult, error)

	// Default response values
	Result     *generation.Txt2ImgResult
	OptionsErr error
	Err        error

	mu sync.Mutex

	// Calls holds the method names in the order they were invoked
	Calls []string

	// Options contains every ModelOptions passed to SetOptions
	Options []generation.ModelOptions

	// Requests contains every request passed to Txt2Img
	Requests []generation.Txt2ImgRequest
}

// SetOptions implements the generation.Generator interface
func (m *MockGenerator) SetOptions(ctx context.Context, opts generation.ModelOptions) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "SetOptions")
	m.Options = append(m.Options, opts)
	m.mu.Unlock()

	if m.SetOptionsFn != nil {
		return m.SetOptionsFn(ctx, opts)
	}
	return m.OptionsErr
}

// Txt2Img implements the generation.Generator interface
func (m *MockGenerator) Txt2Img(
	ctx context.Context,
	req generation.Txt2ImgRequest,
) (*generation.Txt2ImgResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, "Txt2Img")
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Txt2ImgFn != nil {
		return m.Txt2ImgFn(ctx, req)
	}
	return m.Result, m.Err
}

// CallOrder returns a copy of the recorded method names
func (m *MockGenerator) CallOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// NewMockGeneratorWithImage creates a MockGenerator whose Txt2Img returns
// image base64 encoded, with no infotext
func NewMockGeneratorWithImage(image []byte) *MockGenerator {
	return &MockGenerator{
		Result: &generation.Txt2ImgResult{
			Images: []string{base64.StdEncoding.EncodeToString(image)},
		},
	}
}

// NewMockGeneratorWithError creates a MockGenerator whose Txt2Img fails with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		Err: err,
	}
}
