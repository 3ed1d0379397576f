package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// DefaultInterval is the evaluation cadence.
const DefaultInterval = 30 * time.Second

// ErrAlreadyRunning is returned by Start on an engine that is already active.
var ErrAlreadyRunning = errors.New("scheduler already running")

// PassResult summarizes one evaluation pass.
type PassResult struct {
	Evaluated int      // incomplete tasks with a due date
	Fired     []string // IDs alerted in this pass, in list order
	Promoted  string   // ID moved to the front, empty if none
}

// Engine runs deadline evaluation passes over a TaskSource.
type Engine struct {
	source   TaskSource
	clock    Clock
	interval time.Duration
	policy   OffsetPolicy
	logger   *slog.Logger
	observer Observer
	notifier OSNotifier

	// mu serializes passes and guards everything a pass touches.
	mu           sync.Mutex
	registry     *Registry
	reorderer    TaskReorderer
	sink         AlertSink
	osAuthorized bool

	// runMu guards the activation state.
	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	rearm  chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithAlertSink sets the in-app alert receiver.
func WithAlertSink(s AlertSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithOSNotifier sets the platform notification facility.
func WithOSNotifier(n OSNotifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithInterval sets the cadence between passes.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithOffsetPolicy sets the automatic alert lead times.
func WithOffsetPolicy(p OffsetPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the telemetry receiver.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an engine reading tasks from source and promoting through reorderer.
func New(source TaskSource, reorderer TaskReorderer, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		reorderer: reorderer,
		clock:     ClockFunc(time.Now),
		interval:  DefaultInterval,
		policy:    DefaultOffsetPolicy(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:  nopObserver{},
		registry:  NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins an activation: it forgets earlier alerts, settles OS
// notification permission, runs one pass immediately and then keeps
// evaluating every interval until ctx is done or Stop is called.
// An error from the first pass is logged, not returned.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	if e.cancel != nil {
		e.runMu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	rearm := make(chan struct{}, 1)
	e.cancel, e.done, e.rearm = cancel, done, rearm
	e.runMu.Unlock()

	authorized := e.authorize(runCtx)

	e.mu.Lock()
	e.registry.Reset()
	e.osAuthorized = authorized
	e.mu.Unlock()

	e.logger.Info("scheduler started",
		"interval", e.interval,
		"timed_offset", e.policy.Timed,
		"date_only_offset", e.policy.DateOnly,
		"os_notifications", authorized)

	e.runLogged(runCtx)
	go e.loop(runCtx, done, rearm)
	return nil
}

// Stop ends the activation and waits for the loop to exit. OS notifications
// already handed to the platform are not recalled. Stop is a no-op on an
// engine that is not running.
func (e *Engine) Stop() {
	e.runMu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done, e.rearm = nil, nil, nil
	e.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.logger.Info("scheduler stopped")
}

// Running reports whether the engine has an active loop.
func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.cancel != nil
}

// Rearm runs a pass as soon as possible and restarts the cadence. Call it
// when the task list changes. It never blocks and does nothing while the
// engine is stopped.
func (e *Engine) Rearm() {
	e.runMu.Lock()
	rearm := e.rearm
	e.runMu.Unlock()

	if rearm == nil {
		return
	}
	select {
	case rearm <- struct{}{}:
	default:
		// A rearm is already pending.
	}
}

// SetAlertSink replaces the in-app alert receiver and rearms the loop.
func (e *Engine) SetAlertSink(s AlertSink) {
	e.mu.Lock()
	e.sink = s
	e.mu.Unlock()
	e.Rearm()
}

// SetReorderer replaces the promotion target and rearms the loop.
func (e *Engine) SetReorderer(r TaskReorderer) {
	e.mu.Lock()
	e.reorderer = r
	e.mu.Unlock()
	e.Rearm()
}

// Notified reports whether the task has alerted in the current activation.
func (e *Engine) Notified(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Has(id)
}

// NotifiedCount returns how many tasks have alerted in the current activation.
func (e *Engine) NotifiedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Len()
}

// Interval returns the cadence between passes.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// RunPass evaluates every incomplete task once, dispatches alerts and
// promotes the most urgent newly alerted task. A reorder failure is returned
// after alerts have been dispatched and recorded; it is not retried.
func (e *Engine) RunPass(ctx context.Context) (PassResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res, err := e.pass(ctx)
	e.observer.ObservePass(time.Since(start), res.Evaluated, err)
	return res, err
}

func (e *Engine) pass(ctx context.Context) (PassResult, error) {
	var res PassResult

	tasks, err := e.source.List(ctx)
	if err != nil {
		return res, fmt.Errorf("listing tasks: %w", err)
	}

	now := e.clock.Now()
	var fired []*task.Task
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		res.Evaluated++
		if !ShouldAlert(now, t, e.registry, e.policy) {
			continue
		}
		e.dispatch(BuildNotification(t))
		e.registry.Add(t.ID)
		fired = append(fired, t)
		res.Fired = append(res.Fired, t.ID)
	}

	target := SelectPromotion(fired)
	if target == nil || !NeedsPromotion(tasks, target) {
		return res, nil
	}
	if e.reorderer == nil {
		return res, nil
	}
	if err := e.reorderer.Reorder(ctx, PromotedOrder(tasks, target)); err != nil {
		return res, fmt.Errorf("promoting task %s: %w", task.ShortID(target.ID), err)
	}
	res.Promoted = target.ID
	e.observer.ObservePromotion()
	e.logger.Info("task promoted", "task", target.ID, "text", target.Text)
	return res, nil
}

// dispatch sends n on both channels. Failures are logged and otherwise
// ignored: a task alerts at most once.
func (e *Engine) dispatch(n Notification) {
	e.logger.Info("deadline alert", "task", n.TaskID, "body", n.Body)

	if e.osAuthorized && e.notifier != nil {
		if err := e.notifier.Notify(n); err != nil {
			e.logger.Debug("os notification failed", "task", n.TaskID, "err", err)
		} else {
			e.observer.ObserveAlert(ChannelOS)
		}
	}
	if e.sink != nil {
		e.sink.Alert(n)
		e.observer.ObserveAlert(ChannelInApp)
	}
}

// authorize queries OS notification permission, requesting it when absent.
// Any failure counts as not authorized for the whole activation.
func (e *Engine) authorize(ctx context.Context) bool {
	if e.notifier == nil {
		return false
	}
	ok, err := e.notifier.Authorized(ctx)
	if err != nil {
		e.logger.Warn("checking notification permission", "err", err)
		ok = false
	}
	if ok {
		return true
	}
	ok, err = e.notifier.RequestAuthorization(ctx)
	if err != nil {
		e.logger.Warn("requesting notification permission", "err", err)
		return false
	}
	if !ok {
		e.logger.Warn("desktop notifications unavailable; in-app alerts only")
	}
	return ok
}

func (e *Engine) loop(ctx context.Context, done chan<- struct{}, rearm <-chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runLogged(ctx)
		case <-rearm:
			ticker.Reset(e.interval)
			e.runLogged(ctx)
		}
	}
}

func (e *Engine) runLogged(ctx context.Context) {
	res, err := e.RunPass(ctx)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("scheduler pass failed", "err", err)
		}
		return
	}
	if len(res.Fired) > 0 {
		e.logger.Debug("scheduler pass", "evaluated", res.Evaluated, "fired", len(res.Fired), "promoted", res.Promoted)
	}
}
