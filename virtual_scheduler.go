package gostreams

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// VirtualScheduler is a Scheduler driven by a virtual clock, for deterministic tests.
//
// Scheduled actions only run when the clock is advanced. They run in due time order, and in
// scheduling order for equal due times, on the goroutine advancing the clock. Actions run outside
// the scheduler's lock, so they may schedule or cancel other actions.
type VirtualScheduler struct {
	mu    sync.Mutex
	epoch time.Time
	clock time.Duration
	queue []*virtualItem
}

type virtualItem struct {
	due    time.Duration
	action *scheduledAction
}

type virtualHandle struct {
	scheduler *VirtualScheduler
	item      *virtualItem
}

// NewVirtualScheduler returns a virtual scheduler with its clock at zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{
		epoch: time.Unix(0, 0).UTC(),
	}
}

// Now implements Scheduler.
func (s *VirtualScheduler) Now() time.Time {
	return s.epoch.Add(s.Clock())
}

// Clock returns the time elapsed on the virtual clock.
func (s *VirtualScheduler) Clock() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clock
}

// Schedule implements Scheduler. The action runs the next time the clock is advanced.
func (s *VirtualScheduler) Schedule(action func()) Disposable {
	return s.ScheduleAfter(0, action)
}

// ScheduleAfter implements Scheduler.
func (s *VirtualScheduler) ScheduleAfter(delay time.Duration, action func()) Disposable {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &virtualItem{
		due:    s.clock + delay,
		action: newScheduledAction(action),
	}

	s.queue = append(s.queue, item)

	slices.SortStableFunc(s.queue, func(a *virtualItem, b *virtualItem) bool {
		return a.due < b.due
	})

	return &virtualHandle{
		scheduler: s,
		item:      item,
	}
}

// AdvanceBy advances the clock by d, running all actions that become due.
func (s *VirtualScheduler) AdvanceBy(d time.Duration) {
	s.AdvanceTo(s.Clock() + d)
}

// AdvanceTo advances the clock to t, running all actions due at or before t.
// The clock never moves backwards.
func (s *VirtualScheduler) AdvanceTo(t time.Duration) {
	for {
		s.mu.Lock()

		if len(s.queue) == 0 || s.queue[0].due > t {
			if t > s.clock {
				s.clock = t
			}

			s.mu.Unlock()

			return
		}

		item := s.queue[0]
		s.queue = slices.Delete(s.queue, 0, 1)

		if item.due > s.clock {
			s.clock = item.due
		}

		s.mu.Unlock()

		item.action.run()
	}
}

// Run advances the clock until no actions are left.
func (s *VirtualScheduler) Run() {
	for {
		s.mu.Lock()

		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}

		due := s.queue[0].due

		s.mu.Unlock()

		s.AdvanceTo(due)
	}
}

// Len returns the number of pending actions.
func (s *VirtualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

func (h *virtualHandle) Dispose() {
	h.item.action.Dispose()

	s := h.scheduler

	s.mu.Lock()
	defer s.mu.Unlock()

	if index := slices.Index(s.queue, h.item); index >= 0 {
		s.queue = slices.Delete(s.queue, index, index+1)
	}
}
