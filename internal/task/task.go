package task

import (
	"context"
	"strings"
	"time"
)

// TaskStatus represents the outcome of a task within a run
type TaskStatus string

// Possible task status values. A task is pending from its task_started event
// until its task_finished event settles it.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// CommentPrefix marks a queue line that is never treated as a task.
const CommentPrefix = "#"

// Descriptor is one line of the queue: the full argument string for a single
// generation invocation. It is passed to the Executor verbatim and never parsed
// by the runner. Identity is the exact text.
type Descriptor string

// String returns the descriptor text.
func (d Descriptor) String() string {
	return string(d)
}

// ParseDescriptor turns a raw queue line into a Descriptor.
// It reports false for blank lines and comment lines.
func ParseDescriptor(line string) (Descriptor, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix) {
		return "", false
	}
	return Descriptor(trimmed), true
}

// Result captures what happened when a descriptor was handed to an Executor.
type Result struct {
	// Command is the literal command line that was (or would have been) run
	Command string

	// ExitCode is the child's exit status; -1 when the process never ran
	ExitCode int

	// Stdout and Stderr are the captured streams, verbatim
	Stdout string
	Stderr string

	// LaunchErr is set when the process could not be started at all
	LaunchErr error
}

// Succeeded reports whether the task counts as done.
func (r Result) Succeeded() bool {
	return r.LaunchErr == nil && r.ExitCode == 0
}

// LogRecord is the content of one task log file.
type LogRecord struct {
	StartedAt time.Time
	Ordinal   int
	Command   string
	Stdout    string
	Stderr    string
}

// Executor runs a single task to completion.
// Version: 1.0
type Executor interface {
	// Execute blocks until the task has finished. Per-task failures are reported
	// through the Result, never as a panic or a separate error.
	Execute(ctx context.Context, d Descriptor) Result
}

// ExecutorFunc adapts an ordinary function to the Executor interface, allowing
// tasks to run in-process instead of as a child process.
type ExecutorFunc func(ctx context.Context, d Descriptor) Result

// Execute calls f(ctx, d).
func (f ExecutorFunc) Execute(ctx context.Context, d Descriptor) Result {
	return f(ctx, d)
}

// QueueStore defines the persisted list of pending descriptors
// Version: 1.0
type QueueStore interface {
	// Load returns the pending descriptors in file order.
	// A missing backing file yields an empty slice and no error.
	Load(ctx context.Context) ([]Descriptor, error)

	// Persist replaces the queue with remaining, or removes it when remaining is empty
	Persist(ctx context.Context, remaining []Descriptor) error
}

// DoneStore defines the append-only list of completed descriptors
// Version: 1.0
type DoneStore interface {
	// Append records one completed descriptor
	Append(ctx context.Context, d Descriptor) error
}

// LogWriter persists per-task log records
// Version: 1.0
type LogWriter interface {
	// Prepare creates the log location. Calling it repeatedly is not an error.
	Prepare(ctx context.Context) error

	// Write stores one record and returns where it was written
	Write(ctx context.Context, rec LogRecord) (string, error)
}
