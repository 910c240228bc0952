package filestore

import (
	"context"
	"fmt"
	"os"

	"github.com/phrazzld/forgebatch/internal/task"
)

// DoneFileStore implements the task.DoneStore interface as an append-only
// text file. It is never read back, truncated or reordered.
type DoneFileStore struct {
	path string
}

var _ task.DoneStore = (*DoneFileStore)(nil)

// NewDoneFileStore creates a new DoneFileStore backed by path
func NewDoneFileStore(path string) *DoneFileStore {
	return &DoneFileStore{path: path}
}

// Path returns the backing file path
func (s *DoneFileStore) Path() string {
	return s.path
}

// Append adds d as a new line at the end of the file, creating it if needed
func (s *DoneFileStore) Append(ctx context.Context, d task.Descriptor) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open done file %s: %w", s.path, err)
	}

	if _, err := f.WriteString(d.String() + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to done file %s: %w", s.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close done file %s: %w", s.path, err)
	}
	return nil
}
