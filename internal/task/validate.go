package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
)

// ValidatePriority checks that a priority is in the allowed list.
// An empty priority is always allowed.
func ValidatePriority(priority string, allowed []string) error {
	if priority == "" {
		return nil
	}
	for _, p := range allowed {
		if p == priority {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  allowed,
		})
}

// ValidateText rejects empty task text.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return clierr.New(clierr.InvalidInput, "task text must not be empty")
	}
	return nil
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// FormatDueDate returns a CLIError for invalid due date input.
func FormatDueDate(input string, err error) *clierr.Error {
	return ValidateDate("due", input, err)
}

// ValidateTaskNotFound returns a CLIError for an unknown task ID.
func ValidateTaskNotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateTaskRef returns a CLIError for task reference input that is neither
// a list position nor an ID prefix.
func ValidateTaskRef(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskRef, "invalid task reference %q", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateAmbiguousRef returns a CLIError for an ID prefix matching several tasks.
func ValidateAmbiguousRef(input string, matches []string) *clierr.Error {
	return clierr.Newf(clierr.AmbiguousTaskRef, "task reference %q matches %d tasks", input, len(matches)).
		WithDetails(map[string]any{
			"input":   input,
			"matches": matches,
		})
}

// ValidateBoundaryError returns a CLIError for moves past the ends of the list.
func ValidateBoundaryError(id, direction string) *clierr.Error {
	return clierr.Newf(clierr.BoundaryError, "task %s is already at the %s of the list", ShortID(id), direction).
		WithDetails(map[string]any{
			"id":        id,
			"direction": direction,
		})
}

// ValidateSubtaskIndex returns a CLIError for an out-of-range subtask number.
func ValidateSubtaskIndex(id string, n, total int) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "task %s has no subtask %d (has %d)", ShortID(id), n, total).
		WithDetails(map[string]any{
			"id":    id,
			"index": n,
			"total": total,
		})
}

// ValidateRecurrence returns a CLIError for an unparseable recurrence rule.
func ValidateRecurrence(input, reason string) *clierr.Error {
	return clierr.Newf(clierr.InvalidRecurrence, "invalid recurrence %q: %s", input, reason).
		WithDetails(map[string]any{"input": input})
}

// ParseOffset parses a notification offset:
//
//	auto      use the default for the task's due-date kind (returns nil)
//	off       never notify (returns NotificationsOff)
//	N         N minutes before due
//	90m, 2h   Go duration, rounded down to whole minutes
//	1d        whole days
func ParseOffset(s string) (*int, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	switch in {
	case "auto", "":
		return nil, nil
	case "off", "none", "-1":
		v := NotificationsOff
		return &v, nil
	}

	if n, err := strconv.Atoi(in); err == nil {
		if n < 0 {
			return nil, invalidOffset(s)
		}
		return &n, nil
	}
	if days, ok := strings.CutSuffix(in, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return nil, invalidOffset(s)
		}
		v := n * int((24 * time.Hour).Minutes())
		return &v, nil
	}
	d, err := time.ParseDuration(in)
	if err != nil || d < 0 {
		return nil, invalidOffset(s)
	}
	v := int(d / time.Minute)
	return &v, nil
}

// FormatOffset renders an offset the way ParseOffset accepts it.
func FormatOffset(offset *int) string {
	switch {
	case offset == nil:
		return "auto"
	case *offset == NotificationsOff:
		return "off"
	case *offset > 0 && *offset%(24*60) == 0:
		return strconv.Itoa(*offset/(24*60)) + "d"
	case *offset > 0 && *offset%60 == 0:
		return strconv.Itoa(*offset/60) + "h"
	default:
		return strconv.Itoa(*offset) + "m"
	}
}

func invalidOffset(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidOffset,
		"invalid notification offset %q (expected auto, off, minutes or a duration like 2h)", input).
		WithDetails(map[string]any{"input": input})
}
