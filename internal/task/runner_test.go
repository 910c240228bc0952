package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/forgebatch/internal/events"
	platformlogger "github.com/phrazzld/forgebatch/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler collects every progress event it receives
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.ProgressEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) kinds() []events.EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]events.EventKind, 0, len(h.events))
	for _, e := range h.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestRunner(t *testing.T, queue QueueStore, done DoneStore, logs LogWriter, executor Executor) (*Runner, *recordingHandler) {
	t.Helper()

	logger := testLogger()
	emitter := events.NewDispatcher(logger)
	handler := &recordingHandler{}
	emitter.Subscribe(handler)

	runner, err := NewRunner(queue, done, logs, executor, emitter, logger)
	require.NoError(t, err)
	runner.SetClock(func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	})
	return runner, handler
}

func TestNewRunner_Validation(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	emitter := events.NewDispatcher(logger)
	queue := NewMockQueueStore()
	done := NewMockDoneStore()
	logs := NewMockLogWriter()
	executor := NewMockExecutor()

	testCases := []struct {
		name        string
		build       func() (*Runner, error)
		expectedErr error
	}{
		{"nil queue", func() (*Runner, error) { return NewRunner(nil, done, logs, executor, emitter, logger) }, ErrNilQueueStore},
		{"nil done", func() (*Runner, error) { return NewRunner(queue, nil, logs, executor, emitter, logger) }, ErrNilDoneStore},
		{"nil logs", func() (*Runner, error) { return NewRunner(queue, done, nil, executor, emitter, logger) }, ErrNilLogWriter},
		{"nil executor", func() (*Runner, error) { return NewRunner(queue, done, logs, nil, emitter, logger) }, ErrNilExecutor},
		{"nil emitter", func() (*Runner, error) { return NewRunner(queue, done, logs, executor, nil, logger) }, ErrNilEmitter},
		{"nil logger", func() (*Runner, error) { return NewRunner(queue, done, logs, executor, emitter, nil) }, ErrNilLogger},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner, err := tc.build()
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Nil(t, runner)
		})
	}
}

func TestRunner_Run_MixedOutcomes(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a", "b", "c")
	done := NewMockDoneStore()
	logs := NewMockLogWriter()
	executor := NewMockExecutor().
		Succeed("a", "saved a.png").
		Fail("b", 2, "connection refused").
		Succeed("c", "saved c.png")

	runner, handler := newTestRunner(t, queue, done, logs, executor)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Successful tasks are appended to the done store in execution order
	assert.Equal(t, []Descriptor{"a", "c"}, done.Done())
	// Only the failed task is kept for the next run
	assert.Equal(t, []Descriptor{"b"}, queue.Tasks())
	assert.True(t, queue.Exists())

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []Descriptor{"b"}, summary.Remaining)
	assert.False(t, summary.QueueRemoved())

	// Tasks run strictly in queue order
	assert.Equal(t, []Descriptor{"a", "b", "c"}, executor.Calls())

	assert.Equal(t, []events.EventKind{
		events.KindRunStarted,
		events.KindTaskStarted, events.KindTaskFinished,
		events.KindTaskStarted, events.KindTaskFinished,
		events.KindTaskStarted, events.KindTaskFinished,
		events.KindRunFinished,
	}, handler.kinds())

	// Each task is pending while it runs, then settles
	var statuses []string
	for _, e := range handler.events {
		if e.Kind == events.KindTaskStarted || e.Kind == events.KindTaskFinished {
			statuses = append(statuses, e.Status)
		}
	}
	assert.Equal(t, []string{"pending", "completed", "pending", "failed", "pending", "completed"}, statuses)
}

func TestRunner_Run_AllSucceed(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a", "b")
	done := NewMockDoneStore()
	runner, handler := newTestRunner(t, queue, done, NewMockLogWriter(), NewMockExecutor())

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, queue.Exists(), "drained queue must be removed, not emptied")
	assert.Empty(t, queue.Tasks())
	assert.True(t, summary.QueueRemoved())
	assert.Equal(t, []Descriptor{"a", "b"}, done.Done())

	last := handler.events[len(handler.events)-1]
	assert.Equal(t, events.KindRunFinished, last.Kind)
	assert.Equal(t, 0, last.Remaining)
}

func TestRunner_Run_EmptyQueue(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore()
	done := NewMockDoneStore()
	logs := NewMockLogWriter()
	executor := NewMockExecutor()
	runner, _ := newTestRunner(t, queue, done, logs, executor)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, executor.Calls(), "no task may run")
	assert.False(t, logs.Prepared, "log directory must not be created")
	assert.Equal(t, 0, queue.Persisted, "queue must not be touched")
	assert.Empty(t, done.Done())
	assert.False(t, summary.QueueRemoved())
}

func TestRunner_Run_LogRecords(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a", "b")
	logs := NewMockLogWriter()
	executor := NewMockExecutor().
		Succeed("a", "").
		Fail("b", 1, "")
	runner, _ := newTestRunner(t, queue, NewMockDoneStore(), logs, executor)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	records := logs.Records()
	require.Len(t, records, 2, "exactly one log record per executed task")
	assert.True(t, logs.Prepared)

	assert.Equal(t, 1, records[0].Ordinal)
	assert.Equal(t, "generate a", records[0].Command)
	assert.Equal(t, "", records[0].Stdout)
	assert.Equal(t, "", records[0].Stderr)

	assert.Equal(t, 2, records[1].Ordinal)
	assert.Equal(t, "generate b", records[1].Command)
}

func TestRunner_Run_LaunchFailure(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a")
	logs := NewMockLogWriter()
	executor := ExecutorFunc(func(ctx context.Context, d Descriptor) Result {
		return Result{
			Command:   "missing-binary " + d.String(),
			ExitCode:  -1,
			LaunchErr: errors.New(`exec: "missing-binary": executable file not found in $PATH`),
		}
	})
	runner, handler := newTestRunner(t, queue, NewMockDoneStore(), logs, executor)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err, "launch failures never abort the run")

	assert.Equal(t, []Descriptor{"a"}, queue.Tasks())
	assert.Equal(t, 1, summary.Failed)

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Stderr, "executable file not found", "error text replaces empty stderr")

	finished := handler.events[len(handler.events)-2]
	assert.Equal(t, events.KindTaskFinished, finished.Kind)
	assert.Equal(t, "failed", finished.Status)
	assert.Contains(t, finished.Error, "executable file not found")
}

func TestRunner_Run_LogWriteFailureDoesNotBlockRouting(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a", "b")
	done := NewMockDoneStore()
	logs := NewMockLogWriter()
	logs.WriteFn = func(ctx context.Context, rec LogRecord) (string, error) {
		return "", errors.New("disk full")
	}
	executor := NewMockExecutor().Fail("b", 1, "")
	runner, handler := newTestRunner(t, queue, done, logs, executor)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Descriptor{"a"}, done.Done())
	assert.Equal(t, []Descriptor{"b"}, queue.Tasks())
	assert.Equal(t, 2, summary.LogFailures)
	assert.Contains(t, handler.kinds(), events.KindLogFailed)
}

func TestRunner_Run_StoreFailures(t *testing.T) {
	t.Parallel()

	t.Run("load error", func(t *testing.T) {
		queue := NewMockQueueStore("a")
		queue.LoadFn = func(ctx context.Context) ([]Descriptor, error) {
			return nil, errors.New("permission denied")
		}
		executor := NewMockExecutor()
		runner, _ := newTestRunner(t, queue, NewMockDoneStore(), NewMockLogWriter(), executor)

		summary, err := runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreIO)
		assert.Contains(t, err.Error(), "permission denied")
		assert.Nil(t, summary)
		assert.Empty(t, executor.Calls())
	})

	t.Run("log directory error", func(t *testing.T) {
		queue := NewMockQueueStore("a")
		logs := NewMockLogWriter()
		logs.PrepareFn = func(ctx context.Context) error {
			return errors.New("read-only file system")
		}
		executor := NewMockExecutor()
		runner, _ := newTestRunner(t, queue, NewMockDoneStore(), logs, executor)

		_, err := runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreIO)
		assert.Empty(t, executor.Calls())
		assert.Equal(t, []Descriptor{"a"}, queue.Tasks())
	})

	t.Run("done append error leaves queue untouched", func(t *testing.T) {
		queue := NewMockQueueStore("a", "b", "c")
		done := NewMockDoneStore()
		calls := 0
		done.AppendFn = func(ctx context.Context, d Descriptor) error {
			calls++
			if calls == 2 {
				return errors.New("disk full")
			}
			return nil
		}
		runner, _ := newTestRunner(t, queue, done, NewMockLogWriter(), NewMockExecutor())

		_, err := runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreIO)
		assert.Equal(t, 0, queue.Persisted)
		assert.Equal(t, []Descriptor{"a", "b", "c"}, queue.Tasks())
	})

	t.Run("persist error", func(t *testing.T) {
		queue := NewMockQueueStore("a")
		queue.PersistFn = func(ctx context.Context, remaining []Descriptor) error {
			return errors.New("rename failed")
		}
		runner, _ := newTestRunner(t, queue, NewMockDoneStore(), NewMockLogWriter(), AlwaysFail())

		_, err := runner.Run(context.Background())
		assert.ErrorIs(t, err, ErrStoreIO)
	})
}

func TestRunner_Run_DuplicatesAreKept(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("a", "a", "b", "b")
	done := NewMockDoneStore()
	executor := NewMockExecutor().Fail("b", 1, "")
	runner, _ := newTestRunner(t, queue, done, NewMockLogWriter(), executor)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, executor.Calls(), 4, "duplicates are executed independently")
	assert.Equal(t, []Descriptor{"a", "a"}, done.Done())
	assert.Equal(t, []Descriptor{"b", "b"}, queue.Tasks())
}

func TestRunner_Run_RepeatedFailuresAreStable(t *testing.T) {
	t.Parallel()

	queue := NewMockQueueStore("first", "second")
	done := NewMockDoneStore()
	runner, _ := newTestRunner(t, queue, done, NewMockLogWriter(), AlwaysFail())

	for run := 1; run <= 2; run++ {
		_, err := runner.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []Descriptor{"first", "second"}, queue.Tasks(), "after run %d", run)
	}
	assert.Empty(t, done.Done())
}

func TestRunner_Run_ProgressHandlerErrorIgnored(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	emitter := events.NewDispatcher(logger)
	emitter.Subscribe(failingHandler{})

	queue := NewMockQueueStore("a")
	done := NewMockDoneStore()
	runner, err := NewRunner(queue, done, NewMockLogWriter(), NewMockExecutor(), emitter, logger)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Descriptor{"a"}, done.Done())
}

type failingHandler struct{}

func (failingHandler) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	return errors.New("broken pipe")
}

func TestRunner_Run_StoresReceiveRunLogger(t *testing.T) {
	t.Parallel()

	log, buf := platformlogger.NewCaptureLogger(t)
	queue := NewMockQueueStore("a")
	queue.LoadFn = func(ctx context.Context) ([]Descriptor, error) {
		platformlogger.FromContext(ctx).Info("loading queue from mock")
		return []Descriptor{"a"}, nil
	}

	runner, err := NewRunner(queue, NewMockDoneStore(), NewMockLogWriter(), NewMockExecutor(),
		events.NewDispatcher(log), log)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	platformlogger.AssertLogContains(t, buf, "loading queue from mock")
	platformlogger.AssertLogField(t, buf, "run_id", summary.RunID.String())
	platformlogger.AssertLogField(t, buf, "component", "batch_runner")
}
