package scheduler

import (
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// NotificationTitle is the fixed title of every deadline alert.
const NotificationTitle = "Task due soon"

// OffsetPolicy holds the automatic alert lead times used when a task has no
// explicit notification offset.
type OffsetPolicy struct {
	Timed    time.Duration // due date carries a time of day
	DateOnly time.Duration // due date is a calendar day (midnight)
}

// DefaultOffsetPolicy alerts 30 minutes before timed tasks and one day before date-only tasks.
func DefaultOffsetPolicy() OffsetPolicy {
	return OffsetPolicy{Timed: 30 * time.Minute, DateOnly: 24 * time.Hour}
}

// EffectiveOffset resolves how long before its due date t should alert.
// It returns false when notifications are disabled for t.
func EffectiveOffset(t *task.Task, p OffsetPolicy) (time.Duration, bool) {
	if t.NotificationOffset != nil {
		if *t.NotificationOffset < 0 {
			return 0, false
		}
		return time.Duration(*t.NotificationOffset) * time.Minute, true
	}
	if t.IncludeTime {
		return p.Timed, true
	}
	return p.DateOnly, true
}

// ShouldAlert reports whether t must alert at now: it is incomplete, has a
// due date, has not alerted yet, and 0 < due-now <= offset. Overdue tasks
// never alert.
func ShouldAlert(now time.Time, t *task.Task, r *Registry, p OffsetPolicy) bool {
	if t.Completed || t.DueDate == nil || r.Has(t.ID) {
		return false
	}
	offset, ok := EffectiveOffset(t, p)
	if !ok {
		return false
	}
	timeLeft := t.DueDate.Sub(date.FromTime(now))
	return timeLeft > 0 && timeLeft <= offset
}

// BuildNotification renders the alert payload for t. t must have a due date.
func BuildNotification(t *task.Task) Notification {
	due := *t.DueDate
	var body string
	if t.IncludeTime {
		body = fmt.Sprintf("%q is due at %s", t.Text, due.Clock())
	} else {
		body = fmt.Sprintf("%q is due %s", t.Text, due.Time().Format("Mon Jan 2"))
	}
	return Notification{
		TaskID:      t.ID,
		Title:       NotificationTitle,
		Body:        body,
		Due:         due,
		IncludeTime: t.IncludeTime,
	}
}
