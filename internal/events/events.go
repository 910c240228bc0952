package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies which step of a run an event describes.
type EventKind string

// Progress event kinds, in the order a run produces them.
const (
	KindRunStarted   EventKind = "run_started"
	KindTaskStarted  EventKind = "task_started"
	KindTaskFinished EventKind = "task_finished"
	KindLogFailed    EventKind = "log_failed"
	KindRunFinished  EventKind = "run_finished"
)

// ProgressEvent represents one observable step of a batch run.
// It carries plain values only, without direct dependencies on the task package.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// RunID groups all events of the same run
	RunID uuid.UUID `json:"run_id"`

	// Kind indicates which step this event describes
	Kind EventKind `json:"kind"`

	// Ordinal is the 1-based task index; zero for run-level events
	Ordinal int `json:"ordinal,omitempty"`

	// Total is the number of tasks loaded for the run
	Total int `json:"total"`

	Descriptor string `json:"descriptor,omitempty"`
	Status     string `json:"status,omitempty"`
	LogPath    string `json:"log_path,omitempty"`
	Error      string `json:"error,omitempty"`

	// Remaining is the number of descriptors left in the queue after the run
	Remaining int `json:"remaining"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEvent creates a new ProgressEvent for the given run and kind.
func NewProgressEvent(runID uuid.UUID, kind EventKind) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.New(),
		RunID:     runID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the runner to report progress without knowing who listens.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}
