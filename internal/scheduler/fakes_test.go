package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var errBoom = errors.New("boom")

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeList is an ordered task list acting as both TaskSource and TaskReorderer.
type fakeList struct {
	mu         sync.Mutex
	tasks      []*task.Task
	listErr    error
	reorderErr error
	reorders   [][]string
	lists      int
}

func newFakeList(tasks ...*task.Task) *fakeList { return &fakeList{tasks: tasks} }

func (l *fakeList) List(context.Context) ([]*task.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lists++
	if l.listErr != nil {
		return nil, l.listErr
	}
	return task.CloneAll(l.tasks), nil
}

func (l *fakeList) Reorder(_ context.Context, ordered []*task.Task) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reorders = append(l.reorders, taskIDs(ordered))
	if l.reorderErr != nil {
		return l.reorderErr
	}
	byID := make(map[string]*task.Task, len(l.tasks))
	for _, t := range l.tasks {
		byID[t.ID] = t
	}
	next := make([]*task.Task, 0, len(l.tasks))
	for _, t := range ordered {
		next = append(next, byID[t.ID])
	}
	l.tasks = next
	return nil
}

func (l *fakeList) Set(tasks ...*task.Task) {
	l.mu.Lock()
	l.tasks = tasks
	l.mu.Unlock()
}

func (l *fakeList) IDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return taskIDs(l.tasks)
}

func (l *fakeList) Reorders() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]string(nil), l.reorders...)
}

func (l *fakeList) Lists() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists
}

// recordingSink collects in-app alerts.
type recordingSink struct {
	mu  sync.Mutex
	got []Notification
}

func (s *recordingSink) Alert(n Notification) {
	s.mu.Lock()
	s.got = append(s.got, n)
	s.mu.Unlock()
}

func (s *recordingSink) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.got))
	for i, n := range s.got {
		out[i] = n.TaskID
	}
	return out
}

// fakeNotifier is a scriptable OSNotifier.
type fakeNotifier struct {
	mu         sync.Mutex
	authorized bool
	grant      bool
	authErr    error
	requestErr error
	notifyErr  error
	requests   int
	authChecks int
	notified   []string
}

func (n *fakeNotifier) Authorized(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.authChecks++
	return n.authorized, n.authErr
}

func (n *fakeNotifier) RequestAuthorization(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	if n.requestErr != nil {
		return false, n.requestErr
	}
	n.authorized = n.grant
	return n.grant, nil
}

func (n *fakeNotifier) Notify(note Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, note.TaskID)
	return n.notifyErr
}

func (n *fakeNotifier) Notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notified...)
}

// countingObserver tallies engine telemetry.
type countingObserver struct {
	mu         sync.Mutex
	passes     int
	failed     int
	alerts     map[string]int
	promotions int
}

func (o *countingObserver) ObservePass(_ time.Duration, _ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.passes++
	if err != nil {
		o.failed++
	}
}

func (o *countingObserver) ObserveAlert(channel string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.alerts == nil {
		o.alerts = make(map[string]int)
	}
	o.alerts[channel]++
}

func (o *countingObserver) ObservePromotion() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.promotions++
}

func taskIDs(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// dueTask builds an incomplete task due at due. timed selects the 30 minute
// automatic window instead of the one day window.
func dueTask(id string, due time.Time, timed bool) *task.Task {
	return &task.Task{ID: id, Text: id, DueDate: date.FromTime(due).Ptr(), IncludeTime: timed}
}

func withOffset(t *task.Task, minutes int) *task.Task {
	t.NotificationOffset = &minutes
	return t
}
