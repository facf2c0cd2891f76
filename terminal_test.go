package gostreams

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestEach(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := []int{}

	err := Each(ctx, Produce([]int{1, 2, 3}), func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) {
		is.Equal(index, uint64(elem-1))

		ints = append(ints, elem)
	})

	is.NoErr(err)
	is.Equal(ints, []int{1, 2, 3})
}

func TestEach_Error(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	err := Each(context.Background(), Fail[int](boom), func(_ context.Context, _ context.CancelCauseFunc, _ int, _ uint64) {
		t.Fatal("unexpected element")
	})

	is.True(errors.Is(err, boom))
}

func TestEach_Cancel(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	subject := NewSubject[int]()

	go func() {
		for !subject.Terminated() && !subject.HasObservers() {
		}

		for i := 0; subject.HasObservers(); i++ {
			subject.OnNext(i)
		}
	}()

	err := Each(context.Background(), subject, func(_ context.Context, cancel context.CancelCauseFunc, elem int, _ uint64) {
		if elem == 3 {
			cancel(boom)
		}
	})

	is.True(errors.Is(err, boom))
	is.True(!subject.HasObservers())
}

func TestEach_ContextCanceled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Each(ctx, Never[int](), func(_ context.Context, _ context.CancelCauseFunc, _ int, _ uint64) {
		t.Fatal("unexpected element")
	})

	is.True(errors.Is(err, context.Canceled))
}

func TestReduce(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	sum, err := Reduce(ctx, Produce([]int{1, 2, 3, 4, 5}), 0,
		func(_ context.Context, _ context.CancelCauseFunc, elem int, _ uint64, acc int) int {
			return acc + elem
		})

	is.NoErr(err)
	is.Equal(sum, 15)
}

func TestReduce_Cancel(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	ctx := context.Background()

	sum, err := Reduce(ctx, Produce([]int{1, 2, 3, 4, 5}), 0,
		func(_ context.Context, cancel context.CancelCauseFunc, elem int, _ uint64, acc int) int {
			if elem == 3 {
				cancel(boom)
				return acc
			}

			return acc + elem
		})

	is.True(errors.Is(err, boom))
	is.Equal(sum, 3)
}

func TestReduceSlice(t *testing.T) {
	is := is.New(t)

	result, err := ReduceSlice(context.Background(), Empty[int]())

	is.NoErr(err)
	is.Equal(result, []int{})
}

func TestAnyMatch(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	seen := []int{}

	match, err := AnyMatch(ctx, Produce([]int{1, 2, 3, 4, 5}), func(_ context.Context, _ context.CancelCauseFunc, elem int, _ uint64) bool {
		seen = append(seen, elem)
		return elem == 3
	})

	is.NoErr(err)
	is.True(match)
	is.Equal(seen, []int{1, 2, 3})
}

func TestAnyMatch_StopsSource(t *testing.T) {
	is := is.New(t)

	emitted := 0

	ints := Peek(Produce([]int{1, 2, 3, 4, 5}), func(_ int) {
		emitted++
	})

	match, err := AnyMatch(context.Background(), ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, _ uint64) bool {
		return elem == 2
	})

	is.NoErr(err)
	is.True(match)
	is.Equal(emitted, 2)
}

func TestAnyMatch_NoMatch(t *testing.T) {
	is := is.New(t)

	match, err := AnyMatch(context.Background(), Produce([]int{1, 2, 3}), func(_ context.Context, _ context.CancelCauseFunc, elem int, _ uint64) bool {
		return elem > 3
	})

	is.NoErr(err)
	is.True(!match)
}

func TestAnyMatch_DisposesSubscription(t *testing.T) {
	is := is.New(t)

	subject := NewSubject[int]()

	go func() {
		for i := 0; !subject.Terminated(); i++ {
			if subject.HasObservers() {
				subject.OnNext(i)
			}
		}
	}()

	match, err := AnyMatch(context.Background(), subject, func(_ context.Context, _ context.CancelCauseFunc, elem int, _ uint64) bool {
		return elem >= 10
	})

	is.NoErr(err)
	is.True(match)
	is.Equal(subject.ObserverCount(), 0)

	subject.OnCompleted()
}

func TestCount(t *testing.T) {
	is := is.New(t)

	count, err := Count(context.Background(), Produce([]int{1, 2, 3}, []int{4, 5}))

	is.NoErr(err)
	is.Equal(count, uint64(5))
}
