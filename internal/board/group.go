package board

import (
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

const (
	fieldDue      = "due"
	fieldPriority = "priority"
	fieldTag      = "tag"
	noPriority    = "none"
)

// Due buckets in display order.
var dueBuckets = []string{"overdue", "today", "tomorrow", "this week", "later", "no due date"}

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key       string `json:"key"`
	Open      int    `json:"open"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// GroupBy groups tasks by the specified field and returns counts per group.
// A task with several tags counts once in each of its tags.
func GroupBy(tasks []*task.Task, field string, cfg *config.Config, now time.Time) GroupedSummary {
	groups := make(map[string]*GroupSummary)

	for _, t := range tasks {
		for _, key := range extractGroupKeys(t, field, now) {
			g, ok := groups[key]
			if !ok {
				g = &GroupSummary{Key: key}
				groups[key] = g
			}
			g.Total++
			if t.Completed {
				g.Completed++
			} else {
				g.Open++
			}
		}
	}

	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(groups))}
	for _, key := range sortGroupKeys(groups, field, cfg) {
		result.Groups = append(result.Groups, *groups[key])
	}
	return result
}

func extractGroupKeys(t *task.Task, field string, now time.Time) []string {
	switch field {
	case fieldTag:
		if len(t.Tags) == 0 {
			return []string{"(untagged)"}
		}
		return t.Tags
	case fieldPriority:
		if t.Priority == "" {
			return []string{noPriority}
		}
		return []string{t.Priority}
	case fieldDue:
		return []string{dueBucket(t, now)}
	default:
		return []string{"(all)"}
	}
}

// dueBucket classifies a due date by calendar day relative to now.
func dueBucket(t *task.Task, now time.Time) string {
	if t.DueDate == nil {
		return "no due date"
	}
	due := t.DueDate.Time()
	if !t.Completed && due.Before(now) {
		return "overdue"
	}
	today := date.StartOfDay(now)
	switch day := date.StartOfDay(due); {
	case day.Before(today.AddDate(0, 0, 1)):
		return "today"
	case day.Before(today.AddDate(0, 0, 2)):
		return "tomorrow"
	case day.Before(today.AddDate(0, 0, 7)):
		return "this week"
	default:
		return "later"
	}
}

func sortGroupKeys(groups map[string]*GroupSummary, field string, cfg *config.Config) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case fieldDue:
		sort.SliceStable(keys, func(i, j int) bool {
			return config.IndexOf(dueBuckets, keys[i]) < config.IndexOf(dueBuckets, keys[j])
		})
	case fieldPriority:
		rank := func(k string) int {
			if i := cfg.PriorityIndex(k); i >= 0 {
				return i
			}
			return len(cfg.Priorities)
		}
		sort.SliceStable(keys, func(i, j int) bool {
			return rank(keys[i]) < rank(keys[j])
		})
	default:
		sort.Strings(keys)
	}
	return keys
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldDue, fieldPriority, fieldTag}
}
