package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, opts ...Option) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New([]string{dir}, func() { calls.Add(1) }, append([]Option{WithDebounce(20 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, nil)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return &calls
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir)

	for i := range 5 {
		name := filepath.Join(dir, "task-"+string(rune('a'+i))+".md")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestWatcherIgnoresHiddenAndPatterns(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, WithIgnore("*.jsonl"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lock"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activity.jsonl"), []byte("{}\n"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "task.md"), []byte("x"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewMissingPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, func() {})
	assert.Error(t, err)
}
