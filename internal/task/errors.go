package task

import "errors"

// Common errors returned by the task package
var (
	ErrNilQueueStore = errors.New("queue store cannot be nil")
	ErrNilDoneStore  = errors.New("done store cannot be nil")
	ErrNilLogWriter  = errors.New("log writer cannot be nil")
	ErrNilExecutor   = errors.New("executor cannot be nil")
	ErrNilEmitter    = errors.New("event emitter cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")

	// ErrStoreIO wraps any queue, done or log-directory failure that aborts a run
	ErrStoreIO = errors.New("task store I/O failure")
)
