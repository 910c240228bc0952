package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/forgebatch/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDirFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("batches", "task_logs"), LogDirFor(filepath.Join("batches", "done.txt"), ""))
	assert.Equal(t, filepath.Join("batches", "logs"), LogDirFor(filepath.Join("batches", "done.txt"), "logs"))
	assert.Equal(t, "task_logs", LogDirFor("done.txt", "task_logs"))
}

func TestTaskLogWriter(t *testing.T) {
	t.Parallel()

	startedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("prepare is idempotent", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "task_logs")
		w := NewTaskLogWriter(dir)

		require.NoError(t, w.Prepare(context.Background()))
		require.NoError(t, w.Prepare(context.Background()))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("writes three sections verbatim", func(t *testing.T) {
		w := NewTaskLogWriter(filepath.Join(t.TempDir(), "task_logs"))

		path, err := w.Write(context.Background(), task.LogRecord{
			StartedAt: startedAt,
			Ordinal:   3,
			Command:   `forgebatch generate flux --prompt "a cat"`,
			Stdout:    "Image saved to disk: out/flux.png",
			Stderr:    "warning: slow model load",
		})
		require.NoError(t, err)
		assert.Equal(t, "task_20250314_092653_3.log", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t,
			"COMMAND: forgebatch generate flux --prompt \"a cat\"\n\n"+
				"STDOUT:\nImage saved to disk: out/flux.png\n\n"+
				"STDERR:\nwarning: slow model load\n",
			string(data))
	})

	t.Run("empty streams", func(t *testing.T) {
		w := NewTaskLogWriter(filepath.Join(t.TempDir(), "task_logs"))

		path, err := w.Write(context.Background(), task.LogRecord{StartedAt: startedAt, Ordinal: 1, Command: "cmd"})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "COMMAND: cmd\n\nSTDOUT:\n\n\nSTDERR:\n\n", string(data))
	})

	t.Run("same second is disambiguated by ordinal", func(t *testing.T) {
		w := NewTaskLogWriter(filepath.Join(t.TempDir(), "task_logs"))

		first, err := w.Write(context.Background(), task.LogRecord{StartedAt: startedAt, Ordinal: 1, Command: "a"})
		require.NoError(t, err)
		second, err := w.Write(context.Background(), task.LogRecord{StartedAt: startedAt, Ordinal: 2, Command: "b"})
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		entries, err := os.ReadDir(w.Dir())
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("creates the directory on demand", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "task_logs")
		w := NewTaskLogWriter(dir)

		_, err := w.Write(context.Background(), task.LogRecord{StartedAt: startedAt, Ordinal: 1})
		assert.NoError(t, err)
	})
}
