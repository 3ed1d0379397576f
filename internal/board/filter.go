package board

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Completed  *bool // nil=no filter, true=only completed, false=only open
	Priorities []string
	Tag        string
	Search     string        // case-insensitive substring match across text, notes, tags and subtasks
	DueWithin  time.Duration // >0: only open tasks due before Now+DueWithin (overdue included)
	Overdue    bool          // only open tasks past their due date
	HasDue     *bool         // nil=no filter
	Now        time.Time     // reference time for DueWithin and Overdue
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if !matchesCoreFilter(t, opts) {
		return false
	}
	return matchesDueFilter(t, opts)
}

func matchesCoreFilter(t *task.Task, opts FilterOptions) bool {
	if opts.Completed != nil && t.Completed != *opts.Completed {
		return false
	}
	if len(opts.Priorities) > 0 && !containsStr(opts.Priorities, t.Priority) {
		return false
	}
	if opts.Tag != "" && !containsStr(t.Tags, opts.Tag) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	return true
}

func matchesDueFilter(t *task.Task, opts FilterOptions) bool {
	if opts.HasDue != nil && t.HasDue() != *opts.HasDue {
		return false
	}
	if opts.DueWithin <= 0 && !opts.Overdue {
		return true
	}
	if t.Completed || t.DueDate == nil {
		return false
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	due := t.DueDate.Time()
	if opts.Overdue && !due.Before(now) {
		return false
	}
	if opts.DueWithin > 0 && due.After(now.Add(opts.DueWithin)) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across text, notes, tags and subtasks.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Text), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	for _, s := range t.Subtasks {
		if strings.Contains(strings.ToLower(s.Text), q) {
			return true
		}
	}
	return false
}

func containsStr(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
