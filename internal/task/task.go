// Package task handles task files and their frontmatter.
package task

import (
	"slices"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
)

// NotificationsOff is the NotificationOffset value that disables alerts for a task.
const NotificationsOff = -1

// Task is a single to-do item. On disk it is a markdown file whose
// frontmatter holds the fields below and whose body holds Notes.
type Task struct {
	ID                 string          `yaml:"id" json:"id"`
	Text               string          `yaml:"text" json:"text"`
	Completed          bool            `yaml:"completed" json:"completed"`
	CreatedAt          date.Instant    `yaml:"created_at" json:"created_at"`
	CompletedAt        *date.Instant   `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	DueDate            *date.Instant   `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	IncludeTime        bool            `yaml:"include_time,omitempty" json:"include_time,omitempty"`
	NotificationOffset *int            `yaml:"notification_offset,omitempty" json:"notification_offset,omitempty"`
	Priority           string          `yaml:"priority,omitempty" json:"priority,omitempty"`
	Tags               []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Subtasks           []Subtask       `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
	RecurrenceRule     *RecurrenceRule `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	Attachments        []string        `yaml:"attachments,omitempty" json:"attachments,omitempty"`
	Position           int             `yaml:"position" json:"position"`

	// Notes is the markdown content below the frontmatter (not in YAML).
	Notes string `yaml:"-" json:"notes,omitempty"`

	// File is the path to the task file (not in YAML).
	File string `yaml:"-" json:"file,omitempty"`
}

// Subtask is a checklist item inside a task.
type Subtask struct {
	ID        string `yaml:"id" json:"id"`
	Text      string `yaml:"text" json:"text"`
	Completed bool   `yaml:"completed" json:"completed"`
}

// HasDue reports whether the task has a due date.
func (t *Task) HasDue() bool {
	return t.DueDate != nil
}

// NotificationsDisabled reports whether alerts were switched off for this task.
func (t *Task) NotificationsDisabled() bool {
	return t.NotificationOffset != nil && *t.NotificationOffset == NotificationsOff
}

// SubtaskProgress returns the number of completed subtasks and the total.
func (t *Task) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		c.CompletedAt = t.CompletedAt.Ptr()
	}
	if t.DueDate != nil {
		c.DueDate = t.DueDate.Ptr()
	}
	if t.NotificationOffset != nil {
		v := *t.NotificationOffset
		c.NotificationOffset = &v
	}
	if t.RecurrenceRule != nil {
		r := *t.RecurrenceRule
		r.WeekDays = slices.Clone(t.RecurrenceRule.WeekDays)
		r.MonthDays = slices.Clone(t.RecurrenceRule.MonthDays)
		c.RecurrenceRule = &r
	}
	c.Tags = slices.Clone(t.Tags)
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Attachments = slices.Clone(t.Attachments)
	return &c
}

// CloneAll deep-copies a slice of tasks.
func CloneAll(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
