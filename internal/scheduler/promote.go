package scheduler

import "github.com/twiced-technology-gmbh/lumina/internal/task"

// SelectPromotion picks the task with the earliest due date among those
// alerted in one pass. Ties keep the first one encountered. Returns nil when
// fired is empty.
func SelectPromotion(fired []*task.Task) *task.Task {
	var best *task.Task
	for _, t := range fired {
		if t.DueDate == nil {
			continue
		}
		if best == nil || *t.DueDate < *best.DueDate {
			best = t
		}
	}
	return best
}

// NeedsPromotion reports whether target is not already the first incomplete task.
func NeedsPromotion(all []*task.Task, target *task.Task) bool {
	for _, t := range all {
		if !t.Completed {
			return t.ID != target.ID
		}
	}
	return true
}

// PromotedOrder returns all with target moved to the front. Every other
// task, complete or not, keeps its relative order.
func PromotedOrder(all []*task.Task, target *task.Task) []*task.Task {
	out := make([]*task.Task, 0, len(all))
	out = append(out, target)
	for _, t := range all {
		if t.ID != target.ID {
			out = append(out, t)
		}
	}
	return out
}
