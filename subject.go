package gostreams

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Subject is both an Observer and a Source: every notification it receives is delivered to all
// currently subscribed observers.
//
// Once a Subject has received a terminal notification, it keeps it: observers subscribing later
// receive the same terminal notification synchronously from Subscribe.
// Notifications are delivered outside the subject's lock, so observers may subscribe to or
// unsubscribe from the subject while being notified.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []*subjectObserver[T]
	terminal  *Notification[T]
}

type subjectObserver[T any] struct {
	observer Observer[T]
	removed  atomic.Bool
}

// NewSubject returns a new subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe implements Source.
func (s *Subject[T]) Subscribe(o Observer[T]) Disposable {
	s.mu.Lock()

	if s.terminal != nil {
		terminal := *s.terminal
		s.mu.Unlock()

		terminal.Accept(o)

		return Disposed()
	}

	entry := &subjectObserver[T]{observer: o}
	s.observers = append(s.observers, entry)

	s.mu.Unlock()

	return NewDisposable(func() {
		s.remove(entry)
	})
}

func (s *Subject[T]) remove(entry *subjectObserver[T]) {
	entry.removed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	if index := slices.Index(s.observers, entry); index >= 0 {
		s.observers = slices.Delete(s.observers, index, index+1)
	}
}

// OnNext implements Observer.
func (s *Subject[T]) OnNext(elem T) {
	for _, entry := range s.snapshot() {
		if !entry.removed.Load() {
			entry.observer.OnNext(elem)
		}
	}
}

// OnError implements Observer.
func (s *Subject[T]) OnError(err error) {
	s.terminate(Error[T](err))
}

// OnCompleted implements Observer.
func (s *Subject[T]) OnCompleted() {
	s.terminate(Completed[T]())
}

func (s *Subject[T]) terminate(n Notification[T]) {
	s.mu.Lock()

	if s.terminal != nil {
		s.mu.Unlock()
		return
	}

	s.terminal = &n

	observers := s.observers
	s.observers = nil

	s.mu.Unlock()

	for _, entry := range observers {
		if !entry.removed.Load() {
			n.Accept(entry.observer)
		}
	}
}

func (s *Subject[T]) snapshot() []*subjectObserver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.observers)
}

// HasObservers returns true if at least one observer is subscribed.
func (s *Subject[T]) HasObservers() bool {
	return s.ObserverCount() > 0
}

// ObserverCount returns the number of subscribed observers.
func (s *Subject[T]) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.observers)
}

// Terminated returns true once the subject has received a terminal notification.
func (s *Subject[T]) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.terminal != nil
}
