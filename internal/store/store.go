// Package store persists the ordered task list.
//
// Every backend keeps tasks in a user-controlled order: new tasks go to the
// top, and Reorder replaces the whole order in one step. The deadline engine
// only needs List and Reorder; the CLI, TUI and HTTP API use the rest.
package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// Store is a task list backend.
type Store interface {
	// List returns all tasks in list order.
	List(ctx context.Context) ([]*task.Task, error)
	// Get returns a single task by ID.
	Get(ctx context.Context, id string) (*task.Task, error)
	// Add inserts t at the top of the list, assigning ID and CreatedAt when unset.
	Add(ctx context.Context, t *task.Task) error
	// Update replaces the stored content of t. Position is left unchanged.
	Update(ctx context.Context, t *task.Task) error
	// Delete removes a task permanently.
	Delete(ctx context.Context, id string) error
	// Reorder makes ordered the new list order. Tasks missing from ordered
	// keep their relative order after the named ones.
	Reorder(ctx context.Context, ordered []*task.Task) error
	// Close releases backend resources.
	Close() error
}

// ReorderIDs reorders s by task ID.
func ReorderIDs(ctx context.Context, s Store, ids []string) error {
	ordered := make([]*task.Task, len(ids))
	for i, id := range ids {
		ordered[i] = &task.Task{ID: id}
	}
	return s.Reorder(ctx, ordered)
}

// sortTasks orders tasks by position. Ties put newer tasks first.
func sortTasks(tasks []*task.Task) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// applyOrder returns current rearranged so the tasks named in ordered come
// first, in that order, followed by the rest in their existing order.
// Positions are renumbered from zero.
func applyOrder(current, ordered []*task.Task) ([]*task.Task, error) {
	byID := make(map[string]*task.Task, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}

	result := make([]*task.Task, 0, len(current))
	placed := make(map[string]bool, len(current))
	for _, o := range ordered {
		t, ok := byID[o.ID]
		if !ok {
			return nil, task.ValidateTaskNotFound(o.ID)
		}
		if placed[o.ID] {
			continue
		}
		placed[o.ID] = true
		result = append(result, t)
	}
	for _, t := range current {
		if !placed[t.ID] {
			result = append(result, t)
		}
	}

	for i, t := range result {
		t.Position = i
	}
	return result, nil
}

// topPosition returns the position that places a new task above all of tasks.
func topPosition(tasks []*task.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	lowest := tasks[0].Position
	for _, t := range tasks[1:] {
		lowest = min(lowest, t.Position)
	}
	return lowest - 1
}
