package gostreams

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Observer receives the notifications of a Source.
// A source calls OnNext any number of times, followed by at most one call to either OnError or OnCompleted.
// Calls are never made concurrently for the same subscription.
type Observer[T any] interface {
	OnNext(elem T)
	OnError(err error)
	OnCompleted()
}

// ObserverFuncs adapts functions to Observer. Nil functions are ignored.
type ObserverFuncs[T any] struct {
	Next      func(elem T)
	Error     func(err error)
	Completed func()

	// Stopped, if set, is returned by IsStopped.
	Stopped func() bool
}

// A StoppableObserver can ask a synchronous source to stop emitting.
//
// A source that emits synchronously from Subscribe only returns its Disposable once it is done,
// so the observer has nothing to dispose while it is being notified. Such sources check IsStopped
// between elements instead, and stop without a terminal notification once it returns true.
// Operators forward IsStopped from their downstream observer.
type StoppableObserver[T any] interface {
	Observer[T]
	IsStopped() bool
}

// Kind is the kind of a Notification.
type Kind uint8

const (
	// KindNext is an element notification.
	KindNext Kind = iota + 1

	// KindError is a terminal error notification.
	KindError

	// KindCompleted is a terminal completion notification.
	KindCompleted
)

// Notification is a single notification delivered to an Observer.
type Notification[T any] struct {
	Kind Kind

	// Value is set for KindNext.
	Value T

	// Err is set for KindError.
	Err error
}

// RecordingObserver records all notifications it receives. It is safe for concurrent use.
type RecordingObserver[T any] struct {
	mu            sync.Mutex
	notifications []Notification[T]
	done          chan struct{}
}

// OnNext implements Observer.
func (o ObserverFuncs[T]) OnNext(elem T) {
	if o.Next != nil {
		o.Next(elem)
	}
}

// OnError implements Observer.
func (o ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// OnCompleted implements Observer.
func (o ObserverFuncs[T]) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

// IsStopped implements StoppableObserver.
func (o ObserverFuncs[T]) IsStopped() bool {
	return o.Stopped != nil && o.Stopped()
}

// Stopped returns true if o is a StoppableObserver that has asked its source to stop.
func Stopped[T any](o Observer[T]) bool {
	s, ok := o.(StoppableObserver[T])
	return ok && s.IsStopped()
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Next returns a KindNext notification.
func Next[T any](elem T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: elem}
}

// Error returns a KindError notification.
func Error[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// Completed returns a KindCompleted notification.
func Completed[T any]() Notification[T] {
	return Notification[T]{Kind: KindCompleted}
}

// Terminal returns true for KindError and KindCompleted.
func (n Notification[T]) Terminal() bool {
	return n.Kind == KindError || n.Kind == KindCompleted
}

// Accept delivers n to o.
func (n Notification[T]) Accept(o Observer[T]) {
	switch n.Kind {
	case KindNext:
		o.OnNext(n.Value)
	case KindError:
		o.OnError(n.Err)
	case KindCompleted:
		o.OnCompleted()
	}
}

// NewRecordingObserver returns a new recording observer.
func NewRecordingObserver[T any]() *RecordingObserver[T] {
	return &RecordingObserver[T]{
		done: make(chan struct{}),
	}
}

// OnNext implements Observer.
func (o *RecordingObserver[T]) OnNext(elem T) {
	o.record(Next(elem))
}

// OnError implements Observer.
func (o *RecordingObserver[T]) OnError(err error) {
	o.record(Error[T](err))
}

// OnCompleted implements Observer.
func (o *RecordingObserver[T]) OnCompleted() {
	o.record(Completed[T]())
}

func (o *RecordingObserver[T]) record(n Notification[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.notifications = append(o.notifications, n)

	if n.Terminal() {
		select {
		case <-o.done:
		default:
			close(o.done)
		}
	}
}

// Done returns a channel that is closed once a terminal notification has been recorded.
func (o *RecordingObserver[T]) Done() <-chan struct{} {
	return o.done
}

// Notifications returns a copy of all recorded notifications, in order.
func (o *RecordingObserver[T]) Notifications() []Notification[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	return slices.Clone(o.notifications)
}

// Values returns the recorded elements, in order.
func (o *RecordingObserver[T]) Values() []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	values := []T{}

	for _, n := range o.notifications {
		if n.Kind == KindNext {
			values = append(values, n.Value)
		}
	}

	return values
}

// Err returns the recorded error, or nil.
func (o *RecordingObserver[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, n := range o.notifications {
		if n.Kind == KindError {
			return n.Err
		}
	}

	return nil
}

// Completed returns true if a completion has been recorded.
func (o *RecordingObserver[T]) Completed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return slices.IndexFunc(o.notifications, func(n Notification[T]) bool {
		return n.Kind == KindCompleted
	}) >= 0
}

// Terminated returns true if a terminal notification has been recorded.
func (o *RecordingObserver[T]) Terminated() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}
