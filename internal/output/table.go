package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/countdown"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	// Priority colors matching TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	soonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
	soonStyle = lipgloss.NewStyle()
}

// TaskTable renders tasks in list order. The # column is the 1-based
// position commands accept as a task reference.
func TaskTable(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const (
		pad      = 2
		idW      = 10
		maxText  = 48
		maxTagsW = 30
	)
	posW, prioW, textW, dueW, leftW, tagsW := 3, 10, 6, 5, 6, 6
	for i, t := range tasks {
		posW = max(posW, len(strconv.Itoa(i+1))+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		textW = max(textW, min(lipgloss.Width(t.Text)+pad, maxText+pad))
		dueW = max(dueW, len(dueDisplay(t))+pad)
		leftW = max(leftW, len(countdownDisplay(t, now))+pad)
		tagsW = max(tagsW, min(len(strings.Join(t.Tags, ","))+pad, maxTagsW))
	}

	header := fmt.Sprintf("%-*s %-*s %-4s %-*s %-*s %-*s %-*s %s",
		posW, "#", idW, "ID", "DONE", prioW, "PRIORITY",
		textW, "TASK", dueW, "DUE", leftW, "LEFT", "TAGS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for i, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = doneStyle.Render("[x]")
		}
		text := truncate(t.Text, maxText)
		if t.Completed {
			text = dimStyle.Render(text)
		}
		tags := strings.Join(t.Tags, ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}

		row := fmt.Sprintf("%-*d %-*s %s %s %s %s %s %s",
			posW, i+1,
			idW, task.ShortID(t.ID),
			padRight(check, 4), //nolint:mnd // DONE column width
			padRight(styledValue(stringOrDash(t.Priority), priorityStyles), prioW),
			padRight(text, textW),
			padRight(dimIfEmpty(dueDisplay(t)), dueW),
			padRight(styledCountdown(t, now), leftW),
			tags)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, now time.Time) {
	titleLine := "Task " + task.ShortID(t.ID) + ": " + t.Text
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	status := "open"
	if t.Completed {
		status = doneStyle.Render("done")
	}
	printField(w, "Status", status)
	printField(w, "Priority", styledValue(stringOrDash(t.Priority), priorityStyles))
	if len(t.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(t.Tags, ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if t.DueDate != nil {
		due := dueDisplay(t)
		if left := styledCountdown(t, now); left != "" {
			due += " (" + left + ")"
		}
		printField(w, "Due", due)
		printField(w, "Alert", alertDisplay(t))
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	if t.RecurrenceRule != nil {
		printField(w, "Repeats", t.RecurrenceRule.String())
	}
	if len(t.Subtasks) > 0 {
		done, total := t.SubtaskProgress()
		printField(w, "Subtasks", strconv.Itoa(done)+"/"+strconv.Itoa(total))
		for i, s := range t.Subtasks {
			mark := "[ ]"
			if s.Completed {
				mark = doneStyle.Render("[x]")
			}
			fmt.Fprintf(w, "  %-12s %d. %s %s\n", "", i+1, mark, s.Text)
		}
	}
	for _, a := range t.Attachments {
		printField(w, "Attachment", a)
	}
	printField(w, "Created", t.CreatedAt.String())
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.String())
		printField(w, "Lead time", FormatDuration(t.CompletedAt.Sub(t.CreatedAt)))
	}
}

// SummaryTable renders list statistics as a small dashboard.
func SummaryTable(w io.Writer, s board.Summary) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(s.ListName))
	fmt.Fprintf(w, "Total: %d tasks (%d open, %d done)\n\n", s.Total, s.Open, s.Completed)

	const labelW = 16
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", labelW, "DEADLINES", "COUNT")))
	fmt.Fprintf(w, "%-*s %6d\n", labelW, "with due date", s.WithDue)
	fmt.Fprintf(w, "%s %6d\n", padRight(overdueStyle.Render("overdue"), labelW), s.Overdue)
	fmt.Fprintf(w, "%s %6d\n", padRight(soonStyle.Render("due in 24h"), labelW), s.DueSoon)
	fmt.Fprintf(w, "%-*s %6d\n", labelW, "recurring", s.Recurring)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", labelW, "PRIORITY", "OPEN")))
	for _, pc := range s.Priorities {
		fmt.Fprintf(w, "%s %6d\n", padRight(styledValue(pc.Priority, priorityStyles), labelW), pc.Count)
	}
}

// GroupedTable renders per-group open/done counts.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	const keyW = 16
	header := fmt.Sprintf("%-*s %6s %6s %6s", keyW, strings.ToUpper(gs.Field), "OPEN", "DONE", "TOTAL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, g := range gs.Groups {
		fmt.Fprintf(w, "%s %6d %6d %6d\n",
			padRight(styledValue(g.Key, priorityStyles), keyW), g.Open, g.Completed, g.Total)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

func dueDisplay(t *task.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(t.IncludeTime)
}

func countdownDisplay(t *task.Task, now time.Time) string {
	if t.DueDate == nil || t.Completed {
		return ""
	}
	return countdown.Label(t.DueDate.Time(), now)
}

// styledCountdown colors overdue tasks red and tasks inside a day amber.
func styledCountdown(t *task.Task, now time.Time) string {
	label := countdownDisplay(t, now)
	if label == "" {
		return dimStyle.Render("--")
	}
	left := t.DueDate.Time().Sub(now)
	switch {
	case countdown.Overdue(t.DueDate.Time(), now) || label == countdown.Expired:
		return overdueStyle.Render(label)
	case left <= board.DueSoonWindow:
		return soonStyle.Render(label)
	default:
		return label
	}
}

func alertDisplay(t *task.Task) string {
	if t.NotificationsDisabled() {
		return dimStyle.Render("off")
	}
	if t.NotificationOffset == nil {
		return "auto"
	}
	return task.FormatOffset(t.NotificationOffset) + " before"
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func stringOrDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

func dimIfEmpty(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}

// LogTable renders activity log entries, oldest first.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}

	const (
		timeW   = 17
		actionW = 10
		idW     = 10
	)
	header := fmt.Sprintf("%-*s %-*s %-*s %s", timeW, "TIME", actionW, "ACTION", idW, "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		action := e.Action
		if action == board.ActionAlert {
			action = soonStyle.Render(action)
		}
		row := fmt.Sprintf("%-*s %s %-*s %s",
			timeW, e.Timestamp.Local().Format("2006-01-02 15:04"),
			padRight(action, actionW),
			idW, task.ShortID(e.TaskID),
			e.Detail)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}
