package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/countdown"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	resp := ErrorResponse{Error: msg, Code: code, Details: details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort; if writer fails, nothing we can do
}

// BatchResult represents the outcome of a single operation within a batch.
type BatchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// TaskView is a task plus its derived countdown, as printed with --json.
type TaskView struct {
	*task.Task
	Countdown string `json:"countdown,omitempty"`
	Overdue   bool   `json:"overdue,omitempty"`
}

// Views attaches countdowns to tasks. Completed tasks carry none.
func Views(tasks []*task.Task, now time.Time) []TaskView {
	out := make([]TaskView, len(tasks))
	for i, t := range tasks {
		out[i] = View(t, now)
	}
	return out
}

// View attaches the countdown to a single task.
func View(t *task.Task, now time.Time) TaskView {
	v := TaskView{Task: t}
	if t.DueDate != nil && !t.Completed {
		v.Countdown = countdown.Label(t.DueDate.Time(), now)
		v.Overdue = countdown.Overdue(t.DueDate.Time(), now)
	}
	return v
}
