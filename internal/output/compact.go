package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for i, t := range tasks {
		fmt.Fprintln(w, strconv.Itoa(i+1)+". "+formatTaskLine(t, now))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, now time.Time) {
	line := formatTaskLine(t, now)
	if t.DueDate != nil {
		line += " alert:" + task.FormatOffset(t.NotificationOffset)
	}
	if t.RecurrenceRule != nil {
		line += " repeat:" + t.RecurrenceRule.String()
	}
	fmt.Fprintln(w, line)

	ts := "  created:" + t.CreatedAt.String()
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.String()
	}
	fmt.Fprintln(w, ts)

	for i, s := range t.Subtasks {
		mark := " "
		if s.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  %d.[%s] %s\n", i+1, mark, s.Text)
	}
	if t.Notes != "" {
		for _, noteLine := range strings.Split(t.Notes, "\n") {
			fmt.Fprintln(w, "  "+noteLine)
		}
	}
}

// SummaryCompact renders list statistics in compact format.
func SummaryCompact(w io.Writer, s board.Summary) {
	fmt.Fprintf(w, "%s (%d tasks, %d open, %d done)\n", s.ListName, s.Total, s.Open, s.Completed)
	fmt.Fprintf(w, "  due:%d overdue:%d soon:%d recurring:%d\n", s.WithDue, s.Overdue, s.DueSoon, s.Recurring)

	if len(s.Priorities) > 0 {
		parts := make([]string, 0, len(s.Priorities))
		for _, pc := range s.Priorities {
			parts = append(parts, pc.Priority+"="+strconv.Itoa(pc.Count))
		}
		fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
	}
}

// GroupedCompact renders grouped counts in compact format.
func GroupedCompact(w io.Writer, gs board.GroupedSummary) {
	for _, g := range gs.Groups {
		fmt.Fprintf(w, "%s: %d open, %d done\n", g.Key, g.Open, g.Completed)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task, now time.Time) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := "[" + mark + "] " + task.ShortID(t.ID)
	if t.Priority != "" {
		line += " !" + t.Priority
	}
	line += " " + t.Text

	if len(t.Tags) > 0 {
		line += " (" + strings.Join(t.Tags, ", ") + ")"
	}
	if t.DueDate != nil {
		line += " due:" + strings.ReplaceAll(t.DueDate.Format(t.IncludeTime), " ", "T")
		if left := countdownDisplay(t, now); left != "" {
			line += " [" + left + "]"
		}
	}

	return line
}
