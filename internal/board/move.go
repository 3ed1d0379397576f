package board

import (
	"slices"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// Move directions.
const (
	DirectionTop    = "top"
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionBottom = "bottom"
)

// MoveToTop returns tasks with id moved to the front.
func MoveToTop(tasks []*task.Task, id string) ([]*task.Task, error) {
	return MoveTo(tasks, id, 1)
}

// MoveUp returns tasks with id swapped with its predecessor.
func MoveUp(tasks []*task.Task, id string) ([]*task.Task, error) {
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, task.ValidateTaskNotFound(id)
	}
	if i == 0 {
		return nil, task.ValidateBoundaryError(id, DirectionTop)
	}
	return MoveTo(tasks, id, i)
}

// MoveDown returns tasks with id swapped with its successor.
func MoveDown(tasks []*task.Task, id string) ([]*task.Task, error) {
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, task.ValidateTaskNotFound(id)
	}
	if i == len(tasks)-1 {
		return nil, task.ValidateBoundaryError(id, DirectionBottom)
	}
	return MoveTo(tasks, id, i+2)
}

// MoveTo returns tasks with id placed at the 1-based position pos. Positions
// past the end are clamped. Moving a task to where it already is fails with
// a boundary error at either end and NO_CHANGES elsewhere.
func MoveTo(tasks []*task.Task, id string, pos int) ([]*task.Task, error) {
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, task.ValidateTaskNotFound(id)
	}
	pos = min(max(pos, 1), len(tasks))
	if pos-1 == i {
		switch i {
		case 0:
			return nil, task.ValidateBoundaryError(id, DirectionTop)
		case len(tasks) - 1:
			return nil, task.ValidateBoundaryError(id, DirectionBottom)
		}
		return nil, clierr.Newf(clierr.NoChanges, "task %s is already at position %d", task.ShortID(id), pos)
	}

	moving := tasks[i]
	out := slices.Delete(slices.Clone(tasks), i, i+1)
	return slices.Insert(out, pos-1, moving), nil
}

func indexOf(tasks []*task.Task, id string) int {
	return slices.IndexFunc(tasks, func(t *task.Task) bool { return t.ID == id })
}
