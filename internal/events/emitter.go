package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher delivers every progress event to its subscribers, one after the
// other in subscription order, on the emitting goroutine. A run therefore sees
// its report lines in the same order it produced the events.
type Dispatcher struct {
	mu          sync.Mutex
	subscribers []EventHandler
	logger      *slog.Logger
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with no subscribers.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.With("component", "progress_dispatcher")}
}

// Subscribe adds h to the handlers receiving later events.
func (d *Dispatcher) Subscribe(h EventHandler) {
	d.mu.Lock()
	d.subscribers = append(d.subscribers, h)
	d.mu.Unlock()
}

// EmitEvent implements EventEmitter. A failing subscriber does not stop
// delivery to the rest; all failures are returned joined.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *ProgressEvent) error {
	d.mu.Lock()
	subscribers := append([]EventHandler(nil), d.subscribers...)
	d.mu.Unlock()

	var errs []error
	for i, h := range subscribers {
		if err := h.HandleEvent(ctx, event); err != nil {
			d.logger.Debug("progress subscriber failed",
				"subscriber", i,
				"event_kind", event.Kind,
				"ordinal", event.Ordinal,
				"error", err)
			errs = append(errs, fmt.Errorf("subscriber %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
