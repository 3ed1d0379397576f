package board

import (
	"sort"

	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// Sort fields.
const (
	SortPosition = "position"
	SortDue      = "due"
	SortPriority = "priority"
	SortCreated  = "created"
	SortText     = "text"
)

// SortFields lists the accepted --sort values.
func SortFields() []string {
	return []string{SortPosition, SortDue, SortPriority, SortCreated, SortText}
}

// Sort sorts tasks by the given field. Priority uses the config order; tasks
// without a priority sort last. An empty field keeps list order.
func Sort(tasks []*task.Task, field string, reverse bool, cfg *config.Config) {
	if field == "" {
		field = SortPosition
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field, cfg)
		}
		return compareTasks(tasks[i], tasks[j], field, cfg)
	})
}

func compareTasks(a, b *task.Task, field string, cfg *config.Config) bool {
	switch field {
	case SortDue:
		return compareDue(a, b)
	case SortPriority:
		return priorityRank(a, cfg) < priorityRank(b, cfg)
	case SortCreated:
		return a.CreatedAt < b.CreatedAt
	case SortText:
		return a.Text < b.Text
	default:
		return a.Position < b.Position
	}
}

func priorityRank(t *task.Task, cfg *config.Config) int {
	if i := cfg.PriorityIndex(t.Priority); i >= 0 {
		return i
	}
	return len(cfg.Priorities)
}

func compareDue(a, b *task.Task) bool {
	if a.DueDate == nil && b.DueDate == nil {
		return false
	}
	if a.DueDate == nil {
		return false // nil sorts last
	}
	if b.DueDate == nil {
		return true
	}
	return *a.DueDate < *b.DueDate
}
