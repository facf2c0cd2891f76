package gostreams

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestVirtualScheduler_Order(t *testing.T) {
	is := is.New(t)

	s := NewVirtualScheduler()

	order := []string{}

	s.ScheduleAfter(3*time.Second, func() { order = append(order, "c") })
	s.ScheduleAfter(time.Second, func() { order = append(order, "a1") })
	s.ScheduleAfter(time.Second, func() { order = append(order, "a2") })
	s.ScheduleAfter(2*time.Second, func() { order = append(order, "b") })

	is.Equal(s.Len(), 4)

	s.AdvanceBy(2 * time.Second)

	is.Equal(order, []string{"a1", "a2", "b"})
	is.Equal(s.Clock(), 2*time.Second)
	is.Equal(s.Len(), 1)

	s.Run()

	is.Equal(order, []string{"a1", "a2", "b", "c"})
	is.Equal(s.Clock(), 3*time.Second)
	is.Equal(s.Now(), time.Unix(3, 0).UTC())
}

func TestVirtualScheduler_Cancel(t *testing.T) {
	is := is.New(t)

	s := NewVirtualScheduler()

	calls := 0

	handle := s.ScheduleAfter(time.Second, func() {
		calls++
	})

	handle.Dispose()

	is.Equal(s.Len(), 0)

	s.AdvanceBy(time.Minute)

	is.Equal(calls, 0)
}

func TestVirtualScheduler_CancelFromAction(t *testing.T) {
	is := is.New(t)

	s := NewVirtualScheduler()

	calls := 0

	var second Disposable

	s.ScheduleAfter(time.Second, func() {
		second.Dispose()
	})

	second = s.ScheduleAfter(time.Second, func() {
		calls++
	})

	s.Run()

	is.Equal(calls, 0)
}

func TestVirtualScheduler_ScheduleFromAction(t *testing.T) {
	is := is.New(t)

	s := NewVirtualScheduler()

	at := []time.Duration{}

	s.ScheduleAfter(time.Second, func() {
		at = append(at, s.Clock())

		s.ScheduleAfter(time.Second, func() {
			at = append(at, s.Clock())
		})
	})

	s.AdvanceBy(2 * time.Second)

	is.Equal(at, []time.Duration{time.Second, 2 * time.Second})
}

func TestVirtualScheduler_ClockNeverMovesBackwards(t *testing.T) {
	is := is.New(t)

	s := NewVirtualScheduler()

	s.AdvanceTo(5 * time.Second)
	s.AdvanceTo(time.Second)

	is.Equal(s.Clock(), 5*time.Second)

	calls := 0

	s.ScheduleAfter(-time.Second, func() {
		calls++
	})

	s.Schedule(func() {
		calls++
	})

	is.Equal(calls, 0)

	s.AdvanceBy(0)

	is.Equal(calls, 2)
}
