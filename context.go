package gostreams

import (
	"context"
	"errors"
)

// errDisposed is the cancelation cause used when a subscription is disposed by its observer.
var errDisposed = errors.New("subscription disposed")

// contextDone returns true if ctx.Err() != nil.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}

// terminalCause maps the cancelation cause of a stream's context to the error reported to its observer.
// It returns nil for a normally finished stream and for one short-circuited using ErrShortCircuit.
func terminalCause(ctx context.Context) error {
	err := context.Cause(ctx)
	if errors.Is(err, ErrShortCircuit) {
		return nil
	}

	return err
}
