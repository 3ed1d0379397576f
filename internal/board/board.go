// Package board provides list-level operations on task collections:
// resolving references, reordering, filtering and summaries.
package board

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string // empty or "position" keeps list order
	Reverse bool
	Limit   int
}

// List loads all tasks from s, applies filters and sorting.
func List(ctx context.Context, s store.Store, cfg *config.Config, opts ListOptions) ([]*task.Task, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	tasks := Filter(all, opts.Filter)
	Sort(tasks, opts.SortBy, opts.Reverse, cfg)

	if opts.Limit > 0 && len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}
	return tasks, nil
}

// Resolve finds the task a user reference points at. A reference is either a
// 1-based position in tasks or a prefix of a task ID. Positions win when a
// reference could be both.
func Resolve(tasks []*task.Task, ref string) (*task.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return nil, task.ValidateTaskRef(ref)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1], nil
	}

	var matches []*task.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, task.ValidateTaskNotFound(ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = task.ShortID(t.ID)
		}
		return nil, task.ValidateAmbiguousRef(ref, ids)
	}
}

// ResolveAll resolves a comma-separated list of references, dropping duplicates.
func ResolveAll(tasks []*task.Task, refs string) ([]*task.Task, error) {
	seen := make(map[string]bool)
	var out []*task.Task
	for _, ref := range strings.Split(refs, ",") {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		t, err := Resolve(tasks, ref)
		if err != nil {
			return nil, err
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, task.ValidateTaskRef(refs)
	}
	return out, nil
}

// Summary holds aggregate counts for the list.
type Summary struct {
	ListName   string          `json:"list_name"`
	Total      int             `json:"total"`
	Open       int             `json:"open"`
	Completed  int             `json:"completed"`
	WithDue    int             `json:"with_due"`
	Overdue    int             `json:"overdue"`
	DueSoon    int             `json:"due_soon"`
	Recurring  int             `json:"recurring"`
	Priorities []PriorityCount `json:"priorities"`
}

// PriorityCount holds the number of open tasks at a priority level.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// DueSoonWindow is how far ahead Summarize counts open tasks as due soon.
const DueSoonWindow = 24 * time.Hour

// Summarize computes list statistics. Priority counts cover open tasks only;
// tasks without a priority are counted under "none".
func Summarize(cfg *config.Config, tasks []*task.Task, now time.Time) Summary {
	s := Summary{ListName: cfg.List.Name, Total: len(tasks)}
	prio := make(map[string]int, len(cfg.Priorities)+1)

	for _, t := range tasks {
		if t.RecurrenceRule != nil {
			s.Recurring++
		}
		if t.Completed {
			s.Completed++
			continue
		}
		s.Open++
		prio[t.Priority]++
		if t.DueDate == nil {
			continue
		}
		s.WithDue++
		left := t.DueDate.Time().Sub(now)
		switch {
		case left <= 0:
			s.Overdue++
		case left <= DueSoonWindow:
			s.DueSoon++
		}
	}

	s.Priorities = make([]PriorityCount, 0, len(cfg.Priorities)+1)
	for _, p := range cfg.Priorities {
		s.Priorities = append(s.Priorities, PriorityCount{Priority: p, Count: prio[p]})
	}
	s.Priorities = append(s.Priorities, PriorityCount{Priority: noPriority, Count: prio[""]})
	return s
}
