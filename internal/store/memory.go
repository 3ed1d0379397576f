package store

import (
	"context"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// MemoryStore keeps tasks in process memory. Callers always receive copies.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
	now   func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*task.Task), now: time.Now}
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedCopy(), nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, task.ValidateTaskNotFound(id)
	}
	return t.Clone(), nil
}

// Add implements Store.
func (s *MemoryStore) Add(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = task.NewID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = date.FromTime(s.now())
	}
	t.Position = topPosition(s.sortedCopy())
	s.tasks[t.ID] = t.Clone()
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok {
		return task.ValidateTaskNotFound(t.ID)
	}
	updated := t.Clone()
	updated.Position = existing.Position
	s.tasks[t.ID] = updated
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return task.ValidateTaskNotFound(id)
	}
	delete(s.tasks, id)
	return nil
}

// Reorder implements Store.
func (s *MemoryStore) Reorder(_ context.Context, ordered []*task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		current = append(current, t)
	}
	sortTasks(current)

	// applyOrder renumbers the stored tasks in place.
	_, err := applyOrder(current, ordered)
	return err
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) sortedCopy() []*task.Task {
	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sortTasks(out)
	return out
}
