package gostreams

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestNotification_Accept(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	obs := NewRecordingObserver[int]()

	Next(1).Accept(obs)
	Next(2).Accept(obs)
	Error[int](boom).Accept(obs)

	is.Equal(obs.Values(), []int{1, 2})
	is.True(errors.Is(obs.Err(), boom))
	is.True(!obs.Completed())
	is.True(obs.Terminated())

	is.Equal(obs.Notifications(), []Notification[int]{Next(1), Next(2), Error[int](boom)})
}

func TestNotification_Terminal(t *testing.T) {
	is := is.New(t)

	is.True(!Next(1).Terminal())
	is.True(Error[int](errors.New("boom")).Terminal())
	is.True(Completed[int]().Terminal())
}

func TestKind_String(t *testing.T) {
	is := is.New(t)

	is.Equal(KindNext.String(), "next")
	is.Equal(KindError.String(), "error")
	is.Equal(KindCompleted.String(), "completed")
	is.Equal(Kind(0).String(), "unknown")
}

func TestObserverFuncs(t *testing.T) {
	is := is.New(t)

	sum := 0
	completed := false

	obs := ObserverFuncs[int]{
		Next: func(elem int) {
			sum += elem
		},
		Completed: func() {
			completed = true
		},
	}

	obs.OnNext(1)
	obs.OnNext(2)
	obs.OnError(errors.New("ignored"))
	obs.OnCompleted()

	is.Equal(sum, 3)
	is.True(completed)
}

func TestRecordingObserver_Done(t *testing.T) {
	is := is.New(t)

	obs := NewRecordingObserver[int]()

	select {
	case <-obs.Done():
		t.Fatal("done before termination")
	default:
	}

	obs.OnCompleted()
	obs.OnCompleted()

	<-obs.Done()

	is.True(obs.Completed())
}

func TestStopped(t *testing.T) {
	is := is.New(t)

	stop := false

	obs := ObserverFuncs[int]{
		Stopped: func() bool {
			return stop
		},
	}

	is.True(!Stopped[int](obs))

	stop = true

	is.True(Stopped[int](obs))
	is.True(!Stopped[int](ObserverFuncs[int]{}))
	is.True(!Stopped[int](NewRecordingObserver[int]()))
}
