// Package scheduler implements the deadline alert engine.
//
// On every pass the engine reads the current task list, alerts each
// incomplete task whose due date has entered its alert window (once per
// activation), and moves the most urgent newly alerted task to the front of
// the list. Passes run once on Start and then on a fixed cadence.
package scheduler

import (
	"context"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// Notification is the payload of a deadline alert.
type Notification struct {
	TaskID      string       `json:"task_id"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Due         date.Instant `json:"due"`
	IncludeTime bool         `json:"include_time"`
}

// TaskSource provides the current ordered task list. It is read on every pass.
type TaskSource interface {
	List(ctx context.Context) ([]*task.Task, error)
}

// TaskReorderer persists a full replacement order of the task list.
type TaskReorderer interface {
	Reorder(ctx context.Context, ordered []*task.Task) error
}

// AlertSink receives in-app alerts. Implementations must not block.
type AlertSink interface {
	Alert(n Notification)
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(Notification)

// Alert implements AlertSink.
func (f AlertSinkFunc) Alert(n Notification) { f(n) }

// OSNotifier is the platform notification facility.
type OSNotifier interface {
	// Authorized reports whether notifications may be shown.
	Authorized(ctx context.Context) (bool, error)
	// RequestAuthorization asks the platform for permission.
	RequestAuthorization(ctx context.Context) (bool, error)
	// Notify shows n without waiting for the platform to finish.
	Notify(n Notification) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Alert channels reported to an Observer.
const (
	ChannelOS    = "os"
	ChannelInApp = "in_app"
)

// Observer receives engine telemetry.
type Observer interface {
	ObservePass(elapsed time.Duration, evaluated int, err error)
	ObserveAlert(channel string)
	ObservePromotion()
}

type nopObserver struct{}

func (nopObserver) ObservePass(time.Duration, int, error) {}
func (nopObserver) ObserveAlert(string)                   {}
func (nopObserver) ObservePromotion()                     {}
