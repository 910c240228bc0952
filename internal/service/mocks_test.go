package service

import (
	"context"

	"github.com/phrazzld/forgebatch/internal/generation"
	"github.com/phrazzld/forgebatch/internal/platform/webui"
	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the generation.Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) SetOptions(ctx context.Context, opts generation.ModelOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockGenerator) Txt2Img(ctx context.Context, req generation.Txt2ImgRequest) (*generation.Txt2ImgResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.Txt2ImgResult), args.Error(1)
}

// MockInspector mocks the Inspector interface
type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) Samplers(ctx context.Context) ([]webui.Sampler, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webui.Sampler), args.Error(1)
}

func (m *MockInspector) SDModels(ctx context.Context) ([]webui.SDModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webui.SDModel), args.Error(1)
}

func (m *MockInspector) Options(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockInspector) Txt2ImgDefaults(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockInspector) ForgeVersion(ctx context.Context) (any, error) {
	args := m.Called(ctx)
	return args.Get(0), args.Error(1)
}

func (m *MockInspector) Progress(ctx context.Context) (*webui.Progress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webui.Progress), args.Error(1)
}
