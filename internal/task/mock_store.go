package task

import (
	"context"
	"fmt"
	"sync"
)

// MockQueueStore implements the QueueStore interface for testing
type MockQueueStore struct {
	mutex     sync.Mutex
	tasks     []Descriptor
	exists    bool
	Persisted int
	LoadFn    func(ctx context.Context) ([]Descriptor, error)
	PersistFn func(ctx context.Context, remaining []Descriptor) error
}

// NewMockQueueStore creates a queue holding the given descriptors.
// With no descriptors the queue behaves like a missing file.
func NewMockQueueStore(tasks ...Descriptor) *MockQueueStore {
	store := &MockQueueStore{
		tasks:  append([]Descriptor(nil), tasks...),
		exists: len(tasks) > 0,
	}

	store.LoadFn = func(ctx context.Context) ([]Descriptor, error) {
		store.mutex.Lock()
		defer store.mutex.Unlock()
		return append([]Descriptor(nil), store.tasks...), nil
	}

	store.PersistFn = func(ctx context.Context, remaining []Descriptor) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()
		store.tasks = append([]Descriptor(nil), remaining...)
		store.exists = len(remaining) > 0
		store.Persisted++
		return nil
	}

	return store
}

// Load returns the queued descriptors
func (s *MockQueueStore) Load(ctx context.Context) ([]Descriptor, error) {
	return s.LoadFn(ctx)
}

// Persist replaces the queued descriptors
func (s *MockQueueStore) Persist(ctx context.Context, remaining []Descriptor) error {
	return s.PersistFn(ctx, remaining)
}

// Tasks returns a copy of the current queue contents
func (s *MockQueueStore) Tasks() []Descriptor {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Descriptor(nil), s.tasks...)
}

// Exists reports whether the backing "file" would exist
func (s *MockQueueStore) Exists() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.exists
}

// MockDoneStore implements the DoneStore interface for testing
type MockDoneStore struct {
	mutex    sync.Mutex
	done     []Descriptor
	AppendFn func(ctx context.Context, d Descriptor) error
}

// NewMockDoneStore creates an empty done store
func NewMockDoneStore() *MockDoneStore {
	store := &MockDoneStore{}
	store.AppendFn = func(ctx context.Context, d Descriptor) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()
		store.done = append(store.done, d)
		return nil
	}
	return store
}

// Append records a completed descriptor
func (s *MockDoneStore) Append(ctx context.Context, d Descriptor) error {
	return s.AppendFn(ctx, d)
}

// Done returns a copy of everything appended so far
func (s *MockDoneStore) Done() []Descriptor {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Descriptor(nil), s.done...)
}

// MockLogWriter implements the LogWriter interface for testing
type MockLogWriter struct {
	mutex     sync.Mutex
	records   []LogRecord
	Prepared  bool
	PrepareFn func(ctx context.Context) error
	WriteFn   func(ctx context.Context, rec LogRecord) (string, error)
}

// NewMockLogWriter creates a log writer that keeps records in memory
func NewMockLogWriter() *MockLogWriter {
	w := &MockLogWriter{}
	w.PrepareFn = func(ctx context.Context) error {
		w.mutex.Lock()
		defer w.mutex.Unlock()
		w.Prepared = true
		return nil
	}
	w.WriteFn = func(ctx context.Context, rec LogRecord) (string, error) {
		w.mutex.Lock()
		defer w.mutex.Unlock()
		w.records = append(w.records, rec)
		return fmt.Sprintf("task_logs/task_%s_%d.log", rec.StartedAt.Format("20060102_150405"), rec.Ordinal), nil
	}
	return w
}

// Prepare marks the writer as prepared
func (w *MockLogWriter) Prepare(ctx context.Context) error {
	return w.PrepareFn(ctx)
}

// Write stores a record in memory
func (w *MockLogWriter) Write(ctx context.Context, rec LogRecord) (string, error) {
	return w.WriteFn(ctx, rec)
}

// Records returns a copy of the written records
func (w *MockLogWriter) Records() []LogRecord {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return append([]LogRecord(nil), w.records...)
}
