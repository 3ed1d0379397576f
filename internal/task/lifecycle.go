package task

import (
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
)

// SetCompleted marks the task done or reopens it.
//   - Completing stamps CompletedAt (never overwrites an existing stamp).
//   - Reopening clears CompletedAt.
//
// Returns false when the task was already in the requested state.
func SetCompleted(t *Task, done bool, now time.Time) bool {
	if t.Completed == done {
		return false
	}
	t.Completed = done
	if done {
		if t.CompletedAt == nil {
			t.CompletedAt = date.FromTime(now).Ptr()
		}
	} else {
		t.CompletedAt = nil
	}
	return true
}

// Toggle flips the completion state.
func Toggle(t *Task, now time.Time) {
	SetCompleted(t, !t.Completed, now)
}

// ToggleSubtask flips the subtask at the given 1-based index.
func ToggleSubtask(t *Task, n int) error {
	if n < 1 || n > len(t.Subtasks) {
		return ValidateSubtaskIndex(t.ID, n, len(t.Subtasks))
	}
	t.Subtasks[n-1].Completed = !t.Subtasks[n-1].Completed
	return nil
}

// AddSubtask appends a new open subtask.
func AddSubtask(t *Task, text string) Subtask {
	s := Subtask{ID: NewID(), Text: text}
	t.Subtasks = append(t.Subtasks, s)
	return s
}
