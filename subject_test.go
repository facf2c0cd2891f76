package gostreams

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestSubject(t *testing.T) {
	is := is.New(t)

	subject := NewSubject[int]()

	obs1 := NewRecordingObserver[int]()
	obs2 := NewRecordingObserver[int]()

	subject.Subscribe(obs1)
	subject.OnNext(1)

	subject.Subscribe(obs2)
	subject.OnNext(2)

	subject.OnCompleted()

	is.Equal(obs1.Values(), []int{1, 2})
	is.Equal(obs2.Values(), []int{2})
	is.True(obs1.Completed())
	is.True(obs2.Completed())
	is.True(!subject.HasObservers())
}

func TestSubject_Unsubscribe(t *testing.T) {
	is := is.New(t)

	subject := NewSubject[int]()

	obs := NewRecordingObserver[int]()

	sub := subject.Subscribe(obs)
	is.Equal(subject.ObserverCount(), 1)

	subject.OnNext(1)

	sub.Dispose()
	sub.Dispose()
	is.Equal(subject.ObserverCount(), 0)

	subject.OnNext(2)
	subject.OnCompleted()

	is.Equal(obs.Values(), []int{1})
	is.True(!obs.Terminated())
}

func TestSubject_LateSubscriber(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	subject := NewSubject[int]()
	subject.OnError(boom)
	subject.OnCompleted()

	is.True(subject.Terminated())

	obs := NewRecordingObserver[int]()
	subject.Subscribe(obs).Dispose()

	is.True(errors.Is(obs.Err(), boom))
	is.Equal(len(obs.Notifications()), 1)
	is.True(!subject.HasObservers())
}

func TestSubject_UnsubscribeDuringDelivery(t *testing.T) {
	is := is.New(t)

	subject := NewSubject[int]()

	second := NewRecordingObserver[int]()

	var secondSub Disposable

	subject.Subscribe(ObserverFuncs[int]{
		Next: func(_ int) {
			secondSub.Dispose()
		},
	})

	secondSub = subject.Subscribe(second)

	subject.OnNext(1)

	is.Equal(second.Values(), []int{})
	is.Equal(subject.ObserverCount(), 1)
}

func TestSubject_SubscribeDuringDelivery(t *testing.T) {
	is := is.New(t)

	subject := NewSubject[int]()

	late := NewRecordingObserver[int]()

	subscribed := false

	subject.Subscribe(ObserverFuncs[int]{
		Next: func(_ int) {
			if !subscribed {
				subscribed = true
				subject.Subscribe(late)
			}
		},
	})

	subject.OnNext(1)
	subject.OnNext(2)

	is.Equal(late.Values(), []int{2})
}
