package gostreams

import (
	"sync/atomic"
	"time"
)

// Scheduler runs actions, either as soon as possible or after a delay.
//
// Disposing the Disposable returned for an action guarantees that the action will not start
// if it has not started yet. An action that has already started runs to completion.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time

	// Schedule runs action as soon as possible.
	Schedule(action func()) Disposable

	// ScheduleAfter runs action once delay has elapsed.
	ScheduleAfter(delay time.Duration, action func()) Disposable
}

// Scheduled action states.
const (
	actionPending int32 = iota
	actionStarted
	actionCanceled
)

// scheduledAction makes starting and canceling an action mutually exclusive.
type scheduledAction struct {
	state  atomic.Int32
	action func()
	timer  *time.Timer
}

func newScheduledAction(action func()) *scheduledAction {
	return &scheduledAction{action: action}
}

func (a *scheduledAction) run() {
	if a.state.CompareAndSwap(actionPending, actionStarted) {
		a.action()
	}
}

// Dispose implements Disposable.
func (a *scheduledAction) Dispose() {
	if !a.state.CompareAndSwap(actionPending, actionCanceled) {
		return
	}

	if a.timer != nil {
		a.timer.Stop()
	}
}

type immediateScheduler struct{}

// Immediate is a scheduler that runs actions synchronously on the calling goroutine.
// ScheduleAfter blocks the caller for the duration of the delay, so Immediate is unsuited for
// delayed work that callers must not wait for, such as the disconnect delay of RefCount.
var Immediate Scheduler = immediateScheduler{}

func (immediateScheduler) Now() time.Time {
	return time.Now()
}

func (immediateScheduler) Schedule(action func()) Disposable {
	action()
	return Disposed()
}

func (immediateScheduler) ScheduleAfter(delay time.Duration, action func()) Disposable {
	if delay > 0 {
		time.Sleep(delay)
	}

	action()

	return Disposed()
}

// TimeScheduler runs actions on their own goroutines, using the wall clock.
type TimeScheduler struct{}

// NewTimeScheduler returns a new wall clock scheduler.
func NewTimeScheduler() *TimeScheduler {
	return &TimeScheduler{}
}

// Now implements Scheduler.
func (s *TimeScheduler) Now() time.Time {
	return time.Now()
}

// Schedule implements Scheduler.
func (s *TimeScheduler) Schedule(action func()) Disposable {
	a := newScheduledAction(action)
	go a.run()

	return a
}

// ScheduleAfter implements Scheduler.
func (s *TimeScheduler) ScheduleAfter(delay time.Duration, action func()) Disposable {
	if delay < 0 {
		delay = 0
	}

	a := newScheduledAction(action)
	a.timer = time.AfterFunc(delay, a.run)

	return a
}
