package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/forgebatch/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFileStore_Load(t *testing.T) {
	t.Parallel()

	t.Run("missing file is no work", func(t *testing.T) {
		store := NewQueueFileStore(filepath.Join(t.TempDir(), "queue.txt"))

		tasks, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("skips blank and comment lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.txt")
		content := "# tonight's batch\n" +
			"flux --prompt \"a lighthouse\" --seed 7\n" +
			"\n" +
			"   \t\n" +
			"   # realistic --prompt disabled\n" +
			"  jugger --prompt \"a fox\"  \r\n" +
			"flux --prompt \"a lighthouse\" --seed 7\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tasks, err := NewQueueFileStore(path).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []task.Descriptor{
			`flux --prompt "a lighthouse" --seed 7`,
			`jugger --prompt "a fox"`,
			`flux --prompt "a lighthouse" --seed 7`,
		}, tasks, "order and duplicates are preserved")
	})

	t.Run("unreadable path is an error", func(t *testing.T) {
		dir := t.TempDir()
		// A directory cannot be read as a file
		_, err := NewQueueFileStore(dir).Load(context.Background())
		assert.Error(t, err)
	})
}

func TestQueueFileStore_Persist(t *testing.T) {
	t.Parallel()

	t.Run("rewrites remaining tasks only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.txt")
		require.NoError(t, os.WriteFile(path, []byte("# header\na\nb\nc\n"), 0o644))
		store := NewQueueFileStore(path)

		err := store.Persist(context.Background(), []task.Descriptor{"c", "a"})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "c\na\n", string(data), "comments are not re-emitted")

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temp files are left behind")
	})

	t.Run("empty remaining removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.txt")
		require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

		err := NewQueueFileStore(path).Persist(context.Background(), nil)
		require.NoError(t, err)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "queue file should be deleted, not emptied")
	})

	t.Run("removing an absent file is fine", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.txt")
		assert.NoError(t, NewQueueFileStore(path).Persist(context.Background(), nil))
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queue.txt")
		store := NewQueueFileStore(path)
		want := []task.Descriptor{`flux --prompt "x y"`, "jugger --prompt z --steps 30"}

		require.NoError(t, store.Persist(context.Background(), want))
		got, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
