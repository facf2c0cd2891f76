package gostreams

import (
	"context"
	"errors"
	"sync/atomic"
)

// Function returns the result of applying an operation to elem.
type Function[T any, U any] func(elem T) U

// PredicateFunc returns true if elem matches a predicate.
// The index is the 0-based index of elem, in the order emitted by the upstream source.
type PredicateFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) bool

// ErrLimitReached is the cause used to cancel a pull stream once the maximum number of elements
// given to LimitProducer has been reached.
var ErrLimitReached = errors.New("limit reached")

// Map returns a source that calls mapp for each element emitted by src, mapping it to type U.
func Map[T any, U any](src Source[T], mapp Function[T, U]) Source[U] {
	return SourceFunc[U](func(o Observer[U]) Disposable {
		return src.Subscribe(ObserverFuncs[T]{
			Next: func(elem T) {
				o.OnNext(mapp(elem))
			},
			Error:     o.OnError,
			Completed: o.OnCompleted,
			Stopped: func() bool {
				return Stopped(o)
			},
		})
	})
}

// Filter returns a source that only emits the elements of src for which filter returns true.
func Filter[T any](src Source[T], filter Function[T, bool]) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		return src.Subscribe(ObserverFuncs[T]{
			Next: func(elem T) {
				if filter(elem) {
					o.OnNext(elem)
				}
			},
			Error:     o.OnError,
			Completed: o.OnCompleted,
			Stopped: func() bool {
				return Stopped(o)
			},
		})
	})
}

// Peek returns a source that calls peek for each element emitted by src, and emits the same elements.
func Peek[T any](src Source[T], peek func(elem T)) Source[T] {
	return Map(src, func(elem T) T {
		peek(elem)
		return elem
	})
}

// Limit returns a source that emits the same elements as src, in order, up to max elements.
// Once max elements have been emitted, it completes and disposes its subscription to src.
func Limit[T any](src Source[T], max uint64) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		if max == 0 {
			o.OnCompleted()
			return Disposed()
		}

		upstream := &SingleAssignmentDisposable{}

		done := atomic.Uint64{}
		stopped := atomic.Bool{}

		upstream.Set(src.Subscribe(ObserverFuncs[T]{
			Next: func(elem T) {
				if stopped.Load() {
					return
				}

				o.OnNext(elem)

				if done.Add(1) == max {
					stopped.Store(true)
					o.OnCompleted()
					upstream.Dispose()
				}
			},

			Error: func(err error) {
				if !stopped.Swap(true) {
					o.OnError(err)
				}
			},

			Completed: func() {
				if !stopped.Swap(true) {
					o.OnCompleted()
				}
			},

			Stopped: func() bool {
				return stopped.Load() || Stopped(o)
			},
		}))

		return upstream
	})
}

// Skip returns a source that emits the same elements as src, in order, skipping the first num elements.
func Skip[T any](src Source[T], num uint64) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		done := uint64(0)

		return src.Subscribe(ObserverFuncs[T]{
			Next: func(elem T) {
				done++
				if done <= num {
					return
				}

				o.OnNext(elem)
			},
			Error:     o.OnError,
			Completed: o.OnCompleted,
			Stopped: func() bool {
				return Stopped(o)
			},
		})
	})
}

// LimitProducer returns a producer that produces the same elements as prod, in order, up to max elements.
func LimitProducer[T any](prod ProducerFunc[T], max uint64) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		prodCtx, cancelProd := context.WithCancelCause(ctx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan T)

		go func() {
			defer cancelProd(nil)

			defer close(outCh)

			if max == 0 {
				cancelProd(ErrLimitReached)
				return
			}

			done := uint64(0)

			for elem := range ch {
				select {
				case outCh <- elem:
					done++
					if done == max {
						cancelProd(ErrLimitReached)
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}
