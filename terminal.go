package gostreams

import (
	"context"
	"errors"
	"sync"
)

// ConsumerFunc consumes element elem.
// The index is the 0-based index of elem, in the order emitted by the upstream source.
type ConsumerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64)

// AccumulatorFunc folds element elem into the accumulator acc, returning acc, or a new accumulator.
// The index is the 0-based index of elem, in the order emitted by the upstream source.
type AccumulatorFunc[T any, A any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc A) A

// ErrShortCircuit is a generic error used to short-circuit a stream by canceling its context.
var ErrShortCircuit = errors.New("short circuit")

// Each subscribes to src and calls each for each element it emits, blocking until src terminates
// or the stream's context is canceled. The subscription is disposed before Each returns.
// If src fails, it returns the error. If each or ctx cancel the stream's context, it returns the
// cause of the cancelation.
func Each[T any](ctx context.Context, src Source[T], each ConsumerFunc[T]) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	finished := make(chan struct{})
	finish := sync.OnceFunc(func() {
		close(finished)
	})

	mu := sync.Mutex{}
	stopped := false
	index := uint64(0)

	sub := src.Subscribe(ObserverFuncs[T]{
		Next: func(elem T) {
			mu.Lock()
			defer mu.Unlock()

			if stopped || contextDone(ctx) {
				return
			}

			each(ctx, cancel, elem, index)
			index++
		},

		Error: func(err error) {
			cancel(err)
			finish()
		},

		Completed: finish,

		Stopped: func() bool {
			return contextDone(ctx)
		},
	})

	select {
	case <-finished:

	case <-ctx.Done():
	}

	sub.Dispose()

	mu.Lock()
	stopped = true
	mu.Unlock()

	return terminalCause(ctx)
}

// Reduce calls reduce for each element emitted by src, folding it into accumulator acc, returning the final accumulator.
// If src fails, or reduce or ctx cancel the stream's context, it returns the accumulator so far, and the error.
func Reduce[T any, A any](ctx context.Context, src Source[T], acc A, reduce AccumulatorFunc[T, A]) (A, error) {
	err := Each(ctx, src, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) {
		acc = reduce(ctx, cancel, elem, index, acc)
	})

	return acc, err
}

// ReduceSlice collects the elements emitted by src into a slice.
func ReduceSlice[T any](ctx context.Context, src Source[T]) ([]T, error) {
	return Reduce(ctx, src, []T{}, CollectSlice[T]())
}

// CollectSlice returns an accumulator that collects elements into a slice.
func CollectSlice[T any]() AccumulatorFunc[T, []T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64, acc []T) []T {
		return append(acc, elem)
	}
}

// AnyMatch returns true as soon as pred returns true for an element emitted by src, that is, an element matches.
// If an element matches, it cancels the stream's context using ErrShortCircuit, disposing the subscription.
// If src fails, or pred cancels the stream's context, it returns an undefined result, and the error.
func AnyMatch[T any](ctx context.Context, src Source[T], pred PredicateFunc[T]) (bool, error) {
	anyMatch := false

	err := Each(ctx, src, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) {
		if !pred(ctx, cancel, elem, index) {
			return
		}

		anyMatch = true

		cancel(ErrShortCircuit)
	})

	return anyMatch, err
}

// Count returns the number of elements emitted by src.
// If src fails, it returns an undefined result, and the error.
func Count[T any](ctx context.Context, src Source[T]) (uint64, error) {
	count := uint64(0)

	err := Each(ctx, src, func(_ context.Context, _ context.CancelCauseFunc, _ T, _ uint64) {
		count++
	})

	return count, err
}
