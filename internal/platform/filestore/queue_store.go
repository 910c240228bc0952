package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/forgebatch/internal/platform/logger"
	"github.com/phrazzld/forgebatch/internal/task"
)

// QueueFileStore implements the task.QueueStore interface on a text file
// holding one descriptor per line.
type QueueFileStore struct {
	path string
}

var _ task.QueueStore = (*QueueFileStore)(nil)

// NewQueueFileStore creates a new QueueFileStore backed by path
func NewQueueFileStore(path string) *QueueFileStore {
	return &QueueFileStore{path: path}
}

// Path returns the backing file path
func (s *QueueFileStore) Path() string {
	return s.path
}

// Load reads the queue file. A missing file means there is no work.
func (s *QueueFileStore) Load(ctx context.Context) ([]task.Descriptor, error) {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("no queue file found", "path", s.path)
		return []task.Descriptor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue file %s: %w", s.path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	tasks := make([]task.Descriptor, 0, len(lines))
	for _, line := range lines {
		if d, ok := task.ParseDescriptor(line); ok {
			tasks = append(tasks, d)
		}
	}

	log.Debug("queue file loaded", "path", s.path, "task_count", len(tasks))
	return tasks, nil
}

// Persist rewrites the queue with remaining, one descriptor per line.
// When remaining is empty the file is removed instead, so that its absence
// signals a drained queue.
func (s *QueueFileStore) Persist(ctx context.Context, remaining []task.Descriptor) error {
	log := logger.FromContext(ctx)

	if len(remaining) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove queue file %s: %w", s.path, err)
		}
		log.Debug("queue file removed", "path", s.path)
		return nil
	}

	var b strings.Builder
	for _, d := range remaining {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}

	if err := writeFileAtomic(s.path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to rewrite queue file %s: %w", s.path, err)
	}

	log.Debug("queue file rewritten", "path", s.path, "task_count", len(remaining))
	return nil
}

// writeFileAtomic replaces path through a temp file in the same directory,
// so a crash never leaves a half-written queue behind.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
