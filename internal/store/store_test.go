package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// backends returns a fresh instance of every store that runs without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "tasks"), filepath.Join(dir, ".lock")),
	}
}

func texts(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func addAll(t *testing.T, s Store, names ...string) map[string]*task.Task {
	t.Helper()
	byName := make(map[string]*task.Task, len(names))
	for _, n := range names {
		tk := &task.Task{Text: n}
		require.NoError(t, s.Add(context.Background(), tk))
		byName[n] = tk
	}
	return byName
}

func TestAddInsertsAtTop(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			added := addAll(t, s, "first", "second", "third")
			assert.NotEmpty(t, added["first"].ID)
			assert.NotZero(t, added["first"].CreatedAt)

			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"third", "second", "first"}, texts(got))
		})
	}
}

func TestReorder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			added := addAll(t, s, "c", "b", "a") // list order: a, b, c

			require.NoError(t, s.Reorder(ctx, []*task.Task{added["b"], added["a"], added["c"]}))
			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "a", "c"}, texts(got))
			for i, tk := range got {
				assert.Equal(t, i, tk.Position)
			}

			// Partial order: unnamed tasks follow in their existing order.
			require.NoError(t, ReorderIDs(ctx, s, []string{added["c"].ID}))
			got, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "b", "a"}, texts(got))
		})
	}
}

func TestReorderUnknownID(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			addAll(t, s, "x", "y")
			before, err := s.List(ctx)
			require.NoError(t, err)

			err = ReorderIDs(ctx, s, []string{before[1].ID, "missing"})
			assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))

			after, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, texts(before), texts(after))
		})
	}
}

func TestUpdateKeepsPosition(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			added := addAll(t, s, "old", "top")

			edit, err := s.Get(ctx, added["old"].ID)
			require.NoError(t, err)
			edit.Text = "renamed"
			edit.Position = -100
			edit.Notes = "details"
			require.NoError(t, s.Update(ctx, edit))

			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"top", "renamed"}, texts(got))
			assert.Equal(t, "details\n", trimmedNotes(got[1].Notes))

			missing := &task.Task{ID: "nope", Text: "x"}
			assert.True(t, clierr.HasCode(s.Update(ctx, missing), clierr.TaskNotFound))
		})
	}
}

// trimmedNotes normalizes the trailing newline the file store adds.
func trimmedNotes(s string) string {
	if s == "" || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

func TestDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			added := addAll(t, s, "keep", "drop")

			require.NoError(t, s.Delete(ctx, added["drop"].ID))
			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"keep"}, texts(got))

			_, err = s.Get(ctx, added["drop"].ID)
			assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
			assert.True(t, clierr.HasCode(s.Delete(ctx, added["drop"].ID), clierr.TaskNotFound))
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	added := addAll(t, s, "original")

	got, err := s.List(ctx)
	require.NoError(t, err)
	got[0].Text = "mutated"

	again, err := s.Get(ctx, added["original"].ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}

func TestFileStoreRenamesOnTextChange(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir, filepath.Join(dir, ".lock"))
	added := addAll(t, s, "before")

	tk, err := s.Get(ctx, added["before"].ID)
	require.NoError(t, err)
	tk.Text = "after"
	require.NoError(t, s.Update(ctx, tk))

	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "-after.md")
}

func TestFileStoreSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	var warned []string
	s := NewFileStore(dir, filepath.Join(dir, ".lock"), WithWarningHandler(func(w task.ReadWarning) {
		warned = append(warned, w.File)
	}))
	addAll(t, s, "good")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0o600))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, texts(got))
	assert.Equal(t, []string{"broken.md"}, warned)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefault("t")
	cfg.SetDir(t.TempDir())

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, config.StoreDriverFile, Mode(s))

	cfg.Store.Driver = config.StoreDriverMemory
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, config.StoreDriverMemory, Mode(s))

	t.Setenv(config.DatabaseURLEnv, "")
	cfg.Store.Driver = config.StoreDriverPostgres
	_, err = Open(ctx, cfg)
	assert.True(t, clierr.HasCode(err, clierr.StoreUnavailable))
}
