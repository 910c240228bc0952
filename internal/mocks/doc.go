// Package mocks provides shared hand-written mock implementations for testing.
//
// Mocks here record every call they receive and let a test replace any
// method with a function field, so call order and arguments can be asserted
// without a mocking framework:
//
//	gen := mocks.NewMockGeneratorWithImage([]byte("png"))
//	gen.Txt2ImgFn = func(ctx context.Context, req generation.Txt2ImgRequest) (*generation.Txt2ImgResult, error) {
//	    return nil, generation.ErrTransientFailure
//	}
//
// When adding a new mock to this package, name the file after the interface
// being mocked.
package mocks
