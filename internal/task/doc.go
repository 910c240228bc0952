// Package task implements the batch queue runner: it loads pending task
// descriptors, executes each one in order through an Executor, records a log
// per task, moves successful descriptors to the done store and writes the
// failed ones back to the queue for the next run.
//
// Persistence and process execution sit behind the QueueStore, DoneStore,
// LogWriter and Executor interfaces so the runner can be exercised with
// in-memory fakes (see mock_store.go and mock_task.go).
package task
