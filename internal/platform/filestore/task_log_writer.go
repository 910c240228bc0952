package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phrazzld/forgebatch/internal/task"
)

// DefaultLogDirName is the log directory created next to the done file
const DefaultLogDirName = "task_logs"

// logTimestampLayout gives file names one-second resolution; the ordinal
// disambiguates tasks started within the same second.
const logTimestampLayout = "20060102_150405"

// TaskLogWriter implements the task.LogWriter interface, writing one file
// per executed task.
type TaskLogWriter struct {
	dir string
}

var _ task.LogWriter = (*TaskLogWriter)(nil)

// NewTaskLogWriter creates a new TaskLogWriter writing into dir
func NewTaskLogWriter(dir string) *TaskLogWriter {
	return &TaskLogWriter{dir: dir}
}

// LogDirFor returns the log directory that sits next to the done file
func LogDirFor(doneFile, dirName string) string {
	if dirName == "" {
		dirName = DefaultLogDirName
	}
	return filepath.Join(filepath.Dir(doneFile), dirName)
}

// Dir returns the log directory
func (w *TaskLogWriter) Dir() string {
	return w.dir
}

// Prepare creates the log directory. An existing directory is not an error.
func (w *TaskLogWriter) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create task log directory %s: %w", w.dir, err)
	}
	return nil
}

// Write stores rec as task_<timestamp>_<ordinal>.log and returns its path
func (w *TaskLogWriter) Write(ctx context.Context, rec task.LogRecord) (string, error) {
	if err := w.Prepare(ctx); err != nil {
		return "", err
	}

	name := fmt.Sprintf("task_%s_%d.log", rec.StartedAt.Format(logTimestampLayout), rec.Ordinal)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, FormatLogRecord(rec), 0o644); err != nil {
		return "", fmt.Errorf("failed to write task log %s: %w", path, err)
	}
	return path, nil
}

// FormatLogRecord renders the three-section log layout
func FormatLogRecord(rec task.LogRecord) []byte {
	return []byte(fmt.Sprintf("COMMAND: %s\n\nSTDOUT:\n%s\n\nSTDERR:\n%s\n", rec.Command, rec.Stdout, rec.Stderr))
}
