package gostreams

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidArgument is the error wrapped by every ArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

// An ArgumentError reports an invalid construction argument.
type ArgumentError struct {
	// Argument is the name of the invalid argument.
	Argument string

	// Value is the rejected value.
	Value any

	// Reason describes the constraint that was violated.
	Reason string
}

// RefCountOption configures RefCount.
type RefCountOption func(*refCountOptions)

type refCountOptions struct {
	minObservers int

	delay     time.Duration
	hasDelay  bool
	scheduler Scheduler

	name    string
	logger  *slog.Logger
	metrics *Metrics
}

func defaultRefCountOptions() refCountOptions {
	return refCountOptions{
		minObservers: 1,
		logger:       slog.New(slog.DiscardHandler),
	}
}

// WithMinObservers sets the number of subscribers required before connecting. The default is 1.
// Once connected, the connection is kept while there is at least one subscriber.
func WithMinObservers(n int) RefCountOption {
	return func(o *refCountOptions) {
		o.minObservers = n
	}
}

// WithDisconnectDelay delays disconnecting by delay after the last subscriber has left, using
// scheduler to run the disconnect. A subscriber arriving within the delay reuses the connection.
// Immediate is only accepted with a zero delay, since it sleeps on the calling goroutine.
// Without this option, the connection is disposed as soon as the last subscriber leaves.
func WithDisconnectDelay(delay time.Duration, scheduler Scheduler) RefCountOption {
	return func(o *refCountOptions) {
		o.delay = delay
		o.hasDelay = true
		o.scheduler = scheduler
	}
}

// WithName sets the name used in log records and metric labels.
// The default is a short random identifier.
func WithName(name string) RefCountOption {
	return func(o *refCountOptions) {
		o.name = name
	}
}

// WithLogger sets the logger that connection lifecycle events are logged to, at debug level.
// Errors emitted by the source are never logged.
func WithLogger(logger *slog.Logger) RefCountOption {
	return func(o *refCountOptions) {
		o.logger = logger
	}
}

// WithMetrics records connection lifecycle events in m.
func WithMetrics(m *Metrics) RefCountOption {
	return func(o *refCountOptions) {
		o.metrics = m
	}
}

func (o *refCountOptions) validate() error {
	if o.minObservers < 1 {
		return &ArgumentError{
			Argument: "minObservers",
			Value:    o.minObservers,
			Reason:   "must be at least 1",
		}
	}

	if !o.hasDelay {
		return nil
	}

	if o.delay < 0 {
		return &ArgumentError{
			Argument: "disconnectDelay",
			Value:    o.delay,
			Reason:   "must not be negative",
		}
	}

	if o.scheduler == nil {
		return &ArgumentError{
			Argument: "scheduler",
			Value:    nil,
			Reason:   "is required when a disconnect delay is set",
		}
	}

	if o.delay > 0 && o.scheduler == Immediate {
		return &ArgumentError{
			Argument: "scheduler",
			Value:    "Immediate",
			Reason:   "would block the last subscriber for the disconnect delay",
		}
	}

	return nil
}

func newRefCountOptions(opts []RefCountOption) (refCountOptions, error) {
	options := defaultRefCountOptions()

	for _, opt := range opts {
		opt(&options)
	}

	if err := options.validate(); err != nil {
		return refCountOptions{}, err
	}

	if options.name == "" {
		options.name = uuid.NewString()[:8]
	}

	if options.logger == nil {
		options.logger = slog.New(slog.DiscardHandler)
	}

	return options, nil
}

// Error implements error.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidArgument, e.Argument, e.Reason, e.Value)
}

// Unwrap returns ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
