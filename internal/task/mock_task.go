package task

import (
	"context"
	"sync"
)

// MockExecutor is an in-process Executor for testing. Outcomes are looked up
// by descriptor; descriptors without an entry succeed with empty output.
type MockExecutor struct {
	mutex    sync.Mutex
	outcomes map[Descriptor]Result
	calls    []Descriptor
}

// NewMockExecutor creates a MockExecutor with no configured outcomes
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{outcomes: make(map[Descriptor]Result)}
}

// Succeed configures d to exit 0 with the given output
func (e *MockExecutor) Succeed(d Descriptor, stdout string) *MockExecutor {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.outcomes[d] = Result{Command: "generate " + d.String(), Stdout: stdout}
	return e
}

// Fail configures d to exit with code and the given stderr
func (e *MockExecutor) Fail(d Descriptor, code int, stderr string) *MockExecutor {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.outcomes[d] = Result{Command: "generate " + d.String(), ExitCode: code, Stderr: stderr}
	return e
}

// Execute implements the Executor interface
func (e *MockExecutor) Execute(ctx context.Context, d Descriptor) Result {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.calls = append(e.calls, d)
	if r, ok := e.outcomes[d]; ok {
		return r
	}
	return Result{Command: "generate " + d.String()}
}

// Calls returns the descriptors executed so far, in order
func (e *MockExecutor) Calls() []Descriptor {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]Descriptor(nil), e.calls...)
}

// AlwaysFail returns an Executor whose every task exits with code 1
func AlwaysFail() Executor {
	return ExecutorFunc(func(ctx context.Context, d Descriptor) Result {
		return Result{Command: "generate " + d.String(), ExitCode: 1, Stderr: "boom"}
	})
}
