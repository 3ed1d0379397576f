package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/filelock"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// FileStore keeps one markdown file per task in a directory. Writes are
// serialized across processes with an advisory lock so the CLI, the TUI and
// a running server can share one list.
type FileStore struct {
	dir       string
	lockPath  string
	now       func() time.Time
	onWarning func(task.ReadWarning)
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithWarningHandler is called for every task file that fails to parse.
// Malformed files are skipped rather than failing the whole listing.
func WithWarningHandler(fn func(task.ReadWarning)) FileOption {
	return func(s *FileStore) { s.onWarning = fn }
}

// NewFileStore returns a store over tasksDir, locking lockPath for writes.
func NewFileStore(tasksDir, lockPath string, opts ...FileOption) *FileStore {
	s := &FileStore{dir: tasksDir, lockPath: lockPath, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the tasks directory.
func (s *FileStore) Dir() string { return s.dir }

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readSorted()
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, id string) (*task.Task, error) {
	path, err := task.FindByID(s.dir, id)
	if err != nil {
		return nil, err
	}
	return task.Read(path)
}

// Add implements Store.
func (s *FileStore) Add(ctx context.Context, t *task.Task) error {
	return s.locked(ctx, func() error {
		current, err := s.readSorted()
		if err != nil {
			return err
		}
		if t.ID == "" {
			t.ID = task.NewID()
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = date.FromTime(s.now())
		}
		t.Position = topPosition(current)

		const dirMode = 0o750
		if err := os.MkdirAll(s.dir, dirMode); err != nil {
			return fmt.Errorf("creating tasks directory: %w", err)
		}
		path := filepath.Join(s.dir, task.GenerateFilename(t.ID, task.GenerateSlug(t.Text)))
		if err := task.Write(path, t); err != nil {
			return fmt.Errorf("writing task: %w", err)
		}
		t.File = path
		return nil
	})
}

// Update implements Store. A changed text renames the file to match its slug.
func (s *FileStore) Update(ctx context.Context, t *task.Task) error {
	return s.locked(ctx, func() error {
		oldPath, err := task.FindByID(s.dir, t.ID)
		if err != nil {
			return err
		}
		existing, err := task.Read(oldPath)
		if err != nil {
			return err
		}

		updated := t.Clone()
		updated.Position = existing.Position
		newPath := filepath.Join(s.dir, task.GenerateFilename(t.ID, task.GenerateSlug(t.Text)))
		if err := task.Write(newPath, updated); err != nil {
			return fmt.Errorf("writing task: %w", err)
		}
		if newPath != oldPath {
			if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing old task file: %w", err)
			}
		}
		t.File = newPath
		t.Position = existing.Position
		return nil
	})
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.locked(ctx, func() error {
		path, err := task.FindByID(s.dir, id)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("deleting task file: %w", err)
		}
		return nil
	})
}

// Reorder implements Store. Only files whose position changed are rewritten.
func (s *FileStore) Reorder(ctx context.Context, ordered []*task.Task) error {
	return s.locked(ctx, func() error {
		current, err := s.readSorted()
		if err != nil {
			return err
		}
		before := make(map[string]int, len(current))
		for _, t := range current {
			before[t.ID] = t.Position
		}

		next, err := applyOrder(current, ordered)
		if err != nil {
			return err
		}
		for _, t := range next {
			if before[t.ID] == t.Position {
				continue
			}
			if err := task.Write(t.File, t); err != nil {
				return fmt.Errorf("writing task %s: %w", task.ShortID(t.ID), err)
			}
		}
		return nil
	})
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) readSorted() ([]*task.Task, error) {
	tasks, warnings, err := task.ReadAllLenient(s.dir)
	if err != nil {
		return nil, err
	}
	if s.onWarning != nil {
		for _, w := range warnings {
			s.onWarning(w)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *FileStore) locked(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := filelock.LockContext(ctx, s.lockPath)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit
	return fn()
}
