package gostreams

import (
	"sync"
)

// Source pushes notifications to observers.
// Subscribe attaches o and returns a Disposable that detaches it. Subscribe may deliver notifications
// to o, including a terminal notification, before it returns.
type Source[T any] interface {
	Subscribe(o Observer[T]) Disposable
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(o Observer[T]) Disposable

// Subscribe implements Source.
func (f SourceFunc[T]) Subscribe(o Observer[T]) Disposable {
	return f(o)
}

// Produce returns a source that emits the elements of the given slices, in order, and then completes.
// Elements are emitted synchronously on the subscribing goroutine, so Subscribe returns only once all
// of them have been emitted. The observer stops the source early through StoppableObserver, in which
// case no terminal notification is delivered.
func Produce[T any](slices ...[]T) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		for _, slice := range slices {
			for _, elem := range slice {
				if Stopped(o) {
					return Disposed()
				}

				o.OnNext(elem)
			}
		}

		if Stopped(o) {
			return Disposed()
		}

		o.OnCompleted()

		return Disposed()
	})
}

// ProduceChannel returns a source that emits the elements received through the given channels, in order,
// and completes once all channels are closed.
// Each subscription drains the channels on its own goroutine, so subscribers compete for elements.
func ProduceChannel[T any](channels ...<-chan T) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		done := make(chan struct{})

		go func() {
			for _, ch := range channels {
				if !drainChannel(ch, o, done) {
					return
				}
			}

			select {
			case <-done:
			default:
				o.OnCompleted()
			}
		}()

		once := sync.Once{}

		return DisposableFunc(func() {
			once.Do(func() {
				close(done)
			})
		})
	})
}

// drainChannel emits the elements received through ch until it is closed.
// It returns false if done was closed first.
func drainChannel[T any](ch <-chan T, o Observer[T], done <-chan struct{}) bool {
	for {
		select {
		case elem, ok := <-ch:
			if !ok {
				return true
			}

			o.OnNext(elem)

		case <-done:
			return false
		}
	}
}

// Empty returns a source that completes immediately.
func Empty[T any]() Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		o.OnCompleted()
		return Disposed()
	})
}

// Fail returns a source that fails immediately with err.
func Fail[T any](err error) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		o.OnError(err)
		return Disposed()
	})
}

// Never returns a source that never emits.
func Never[T any]() Source[T] {
	return SourceFunc[T](func(_ Observer[T]) Disposable {
		return Disposed()
	})
}
