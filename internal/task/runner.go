package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgebatch/internal/events"
	platformlogger "github.com/phrazzld/forgebatch/internal/platform/logger"
)

// Summary describes the durable outcome of one run
type Summary struct {
	// RunID correlates log lines and progress events of the run
	RunID uuid.UUID

	// Total is the number of descriptors loaded from the queue
	Total int

	Completed   int
	Failed      int
	LogFailures int

	// Remaining holds the descriptors written back to the queue, in order
	Remaining []Descriptor
}

// QueueRemoved reports whether the run drained the queue and removed its file.
func (s *Summary) QueueRemoved() bool {
	return s.Total > 0 && len(s.Remaining) == 0
}

// Runner executes every pending descriptor of a queue exactly once, strictly
// in order, one child at a time. Successful descriptors move to the done store,
// failed ones are written back to the queue for the next run.
type Runner struct {
	queue    QueueStore
	done     DoneStore
	logs     LogWriter
	executor Executor
	emitter  events.EventEmitter
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner creates a new Runner
func NewRunner(
	queue QueueStore,
	done DoneStore,
	logs LogWriter,
	executor Executor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*Runner, error) {
	// Validate dependencies
	if queue == nil {
		return nil, ErrNilQueueStore
	}
	if done == nil {
		return nil, ErrNilDoneStore
	}
	if logs == nil {
		return nil, ErrNilLogWriter
	}
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Runner{
		queue:    queue,
		done:     done,
		logs:     logs,
		executor: executor,
		emitter:  emitter,
		logger:   logger.With("component", "batch_runner"),
		now:      time.Now,
	}, nil
}

// SetClock replaces the clock used to stamp task log records
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run performs one pass over the queue.
//
// Per-task failures (launch errors, nonzero exits, log write errors) never abort
// the run. Failures to read or write the queue, the done store or the log
// directory do, and are returned wrapped in ErrStoreIO. Since the queue is only
// rewritten at the very end, an aborted run leaves it as it was.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.New()}
	logger := r.logger.With("run_id", summary.RunID)
	ctx = platformlogger.WithLogger(ctx, logger)

	tasks, err := r.queue.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load queue: %w", ErrStoreIO, err)
	}
	summary.Total = len(tasks)

	r.emit(ctx, logger, summary, events.KindRunStarted, nil)

	if len(tasks) == 0 {
		logger.Info("no tasks to process")
		r.emit(ctx, logger, summary, events.KindRunFinished, nil)
		return summary, nil
	}

	if err := r.logs.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to prepare task log directory: %w", ErrStoreIO, err)
	}

	logger.Info("starting batch run", "task_count", len(tasks))

	retained := make([]Descriptor, 0)
	for i, d := range tasks {
		ordinal := i + 1
		taskLogger := logger.With("ordinal", ordinal, "total", len(tasks), "descriptor", d.String())

		r.emit(ctx, taskLogger, summary, events.KindTaskStarted, func(e *events.ProgressEvent) {
			e.Ordinal = ordinal
			e.Descriptor = d.String()
			e.Status = string(TaskStatusPending)
		})

		startedAt := r.now()
		result := r.executor.Execute(ctx, d)

		logPath, logErr := r.writeLog(ctx, startedAt, ordinal, d, result)
		if logErr != nil {
			summary.LogFailures++
			taskLogger.Error("failed to write task log", "error", logErr)
			r.emit(ctx, taskLogger, summary, events.KindLogFailed, func(e *events.ProgressEvent) {
				e.Ordinal = ordinal
				e.Descriptor = d.String()
				e.Error = logErr.Error()
			})
		}

		status := TaskStatusCompleted
		if result.Succeeded() {
			if err := r.done.Append(ctx, d); err != nil {
				return nil, fmt.Errorf("%w: failed to append to done store: %w", ErrStoreIO, err)
			}
			summary.Completed++
			taskLogger.Info("task completed successfully", "log_path", logPath)
		} else {
			status = TaskStatusFailed
			retained = append(retained, d)
			summary.Failed++
			taskLogger.Warn("task failed, keeping in queue",
				"exit_code", result.ExitCode,
				"launch_error", errString(result.LaunchErr),
				"log_path", logPath)
		}

		r.emit(ctx, taskLogger, summary, events.KindTaskFinished, func(e *events.ProgressEvent) {
			e.Ordinal = ordinal
			e.Descriptor = d.String()
			e.Status = string(status)
			e.LogPath = logPath
			e.Error = errString(result.LaunchErr)
		})
	}

	if err := r.queue.Persist(ctx, retained); err != nil {
		return nil, fmt.Errorf("%w: failed to persist queue: %w", ErrStoreIO, err)
	}
	summary.Remaining = retained

	logger.Info("batch run finished",
		"completed", summary.Completed,
		"failed", summary.Failed,
		"log_failures", summary.LogFailures,
		"queue_removed", summary.QueueRemoved())

	r.emit(ctx, logger, summary, events.KindRunFinished, func(e *events.ProgressEvent) {
		e.Remaining = len(retained)
	})

	return summary, nil
}

// writeLog stores the record for one executed task. A task that never
// launched gets its error text in place of the empty stderr.
func (r *Runner) writeLog(ctx context.Context, startedAt time.Time, ordinal int, d Descriptor, result Result) (string, error) {
	rec := LogRecord{
		StartedAt: startedAt,
		Ordinal:   ordinal,
		Command:   result.Command,
		Stdout:    result.Stdout,
		Stderr:    result.Stderr,
	}
	if rec.Command == "" {
		rec.Command = d.String()
	}
	if result.LaunchErr != nil && rec.Stderr == "" {
		rec.Stderr = result.LaunchErr.Error()
	}
	return r.logs.Write(ctx, rec)
}

// emit publishes a progress event. Handler failures are logged and otherwise
// ignored; they never change the outcome of a run.
func (r *Runner) emit(
	ctx context.Context,
	logger *slog.Logger,
	summary *Summary,
	kind events.EventKind,
	fill func(e *events.ProgressEvent),
) {
	event := events.NewProgressEvent(summary.RunID, kind)
	event.Total = summary.Total
	if fill != nil {
		fill(event)
	}
	if err := r.emitter.EmitEvent(ctx, event); err != nil {
		logger.Warn("progress handler failed", "event_kind", kind, "error", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
