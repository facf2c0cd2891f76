package gostreams

import (
	"context"
	"errors"
	"sync"
)

// ProducerFunc returns a channel of elements for a lazy, pull-based stream.
// Producers must stop producing and close the channel once ctx is canceled.
// A producer may short-circuit the stream by calling cancel with an error.
type ProducerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T

// Pull returns a producer that produces the elements of the given slices, in order.
func Pull[T any](slices ...[]T) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, slice := range slices {
				for _, elem := range slice {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// FromProducer returns a cold source that runs prod once for every subscriber.
//
// The subscriber completes when the producer's channel is closed, or fails with the producer's
// cancelation cause. Canceling with ErrShortCircuit completes the subscriber.
// Disposing the subscription cancels the producer, and no terminal notification is delivered.
func FromProducer[T any](prod ProducerFunc[T]) Source[T] {
	return SourceFunc[T](func(o Observer[T]) Disposable {
		ctx, cancel := context.WithCancelCause(context.Background())

		ch := prod(ctx, cancel)

		go func() {
			defer cancel(nil)

			for elem := range ch {
				if contextDone(ctx) {
					break
				}

				o.OnNext(elem)
			}

			if errors.Is(context.Cause(ctx), errDisposed) {
				return
			}

			if err := terminalCause(ctx); err != nil {
				o.OnError(err)
				return
			}

			o.OnCompleted()
		}()

		return NewDisposable(func() {
			cancel(errDisposed)
		})
	})
}

// ToProducer returns a producer that subscribes to src and produces the elements it emits, in order.
//
// The subscription is made on a new goroutine, so src may emit synchronously.
// If src fails, the stream's context is canceled with the error as its cause.
// The subscription is disposed once the stream's context is canceled.
func ToProducer[T any](src Source[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		finished := make(chan struct{})
		finish := sync.OnceFunc(func() {
			close(finished)
		})

		mu := sync.RWMutex{}
		closed := false

		obs := ObserverFuncs[T]{
			Next: func(elem T) {
				mu.RLock()
				defer mu.RUnlock()

				if closed {
					return
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
				}
			},

			Error: func(err error) {
				cancel(err)
				finish()
			},

			Completed: finish,

			Stopped: func() bool {
				return contextDone(ctx)
			},
		}

		go func() {
			sub := src.Subscribe(obs)

			select {
			case <-finished:

			case <-ctx.Done():
			}

			sub.Dispose()

			mu.Lock()
			closed = true
			close(outCh)
			mu.Unlock()
		}()

		return outCh
	}
}
