package events

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleHandler renders progress events as the plain-text batch report:
//
//	[Task 2/5] Running: flux --prompt "a cat"
//	Task failed (see log). Will keep in queue. Log: task_logs/task_..._2.log
type ConsoleHandler struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleHandler creates a ConsoleHandler writing to out.
func NewConsoleHandler(out io.Writer) *ConsoleHandler {
	return &ConsoleHandler{out: out}
}

// HandleEvent implements the EventHandler interface.
func (h *ConsoleHandler) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	switch event.Kind {
	case KindRunStarted:
		if event.Total == 0 {
			_, err = fmt.Fprintln(h.out, "No tasks to process.")
		}
	case KindTaskStarted:
		_, err = fmt.Fprintf(h.out, "\n[Task %d/%d] Running: %s\n", event.Ordinal, event.Total, event.Descriptor)
	case KindTaskFinished:
		logPath := event.LogPath
		if logPath == "" {
			logPath = "-"
		}
		switch {
		case event.Status == "completed":
			_, err = fmt.Fprintf(h.out, "Task succeeded. Log: %s\n", logPath)
		case event.Error != "":
			_, err = fmt.Fprintf(h.out, "Exception running task: %s. Will keep in queue. Log: %s\n", event.Error, logPath)
		default:
			_, err = fmt.Fprintf(h.out, "Task failed (see log). Will keep in queue. Log: %s\n", logPath)
		}
	case KindLogFailed:
		_, err = fmt.Fprintf(h.out, "Could not write task log: %s\n", event.Error)
	case KindRunFinished:
		if event.Total == 0 {
			return nil
		}
		if event.Remaining > 0 {
			_, err = fmt.Fprintf(h.out, "%d task(s) left in queue for next run.\n", event.Remaining)
		} else {
			_, err = fmt.Fprintln(h.out, "All tasks completed and queue file removed.")
		}
	}
	return err
}
