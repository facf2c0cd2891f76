package gostreams

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// RefCountSource shares a single connection to a ConnectableSource between its subscribers.
//
// It connects once the number of subscribers reaches the configured minimum, keeps the connection
// while at least one subscriber remains, and disconnects when the last one leaves, either
// immediately or after the configured delay. A subscription leaves when it is disposed, or when its
// observer receives a terminal notification, whichever happens first.
//
// All state transitions are serialized by a single lock. The lock is never held while calling
// into the wrapped source or into observers, so observers may terminate, subscribe, or dispose
// from within their callbacks, including from within Subscribe.
type RefCountSource[T any] struct {
	source  ConnectableSource[T]
	options refCountOptions
	logger  *slog.Logger

	mu         sync.Mutex
	count      int
	generation uint64
	state      connectionState
	conn       Disposable
	pending    *pendingDisconnect
}

// connectionState is the state of the shared connection.
type connectionState uint8

const (
	stateDisconnected connectionState = iota

	// stateConnecting: Connect has been decided and is being called outside the lock.
	stateConnecting

	// stateConnected: conn is live. With a pending disconnect, the count is zero.
	stateConnected

	// stateDisconnecting: conn has been detached and is being disposed outside the lock.
	stateDisconnecting
)

// pendingDisconnect is a delayed disconnect, valid only while it is the current one and its generation is current.
type pendingDisconnect struct {
	generation uint64
	handle     Disposable
}

type transitionKind uint8

const (
	transitionNone transitionKind = iota
	transitionConnect
	transitionDisconnect
	transitionSchedule
)

// transition is a side effect decided under the lock and performed outside it.
type transition struct {
	kind       transitionKind
	generation uint64
	conn       Disposable
	pending    *pendingDisconnect
}

// refCountSubscription is the observer attached to the wrapped source for a single subscriber.
type refCountSubscription[T any] struct {
	parent   *RefCountSource[T]
	observer Observer[T]
	upstream SingleAssignmentDisposable
	detached atomic.Bool
}

// RefCount returns a source that connects src while it has subscribers.
// It returns an *ArgumentError if an option is invalid.
func RefCount[T any](src ConnectableSource[T], opts ...RefCountOption) (*RefCountSource[T], error) {
	if src == nil {
		return nil, &ArgumentError{
			Argument: "source",
			Value:    nil,
			Reason:   "must not be nil",
		}
	}

	options, err := newRefCountOptions(opts)
	if err != nil {
		return nil, err
	}

	return &RefCountSource[T]{
		source:  src,
		options: options,
		logger:  options.logger.With("refcount", options.name),
	}, nil
}

// Subscribe implements Source.
//
// The observer is subscribed to the wrapped source before connecting, so it receives every element
// emitted by a connection it triggered. If the wrapped source terminates the observer synchronously,
// the subscriber count is restored, and any resulting disconnect performed, before Subscribe returns.
func (r *RefCountSource[T]) Subscribe(o Observer[T]) Disposable {
	r.mu.Lock()

	r.count++
	r.options.metrics.observeSubscribers(r.options.name, r.count)

	canceled := r.cancelPendingLocked()
	next := r.nextLocked()

	r.mu.Unlock()

	if canceled != nil {
		canceled.Dispose()
	}

	sub := &refCountSubscription[T]{
		parent:   r,
		observer: o,
	}

	r.forward(sub, next)

	ok := false

	defer func() {
		if !ok {
			// Connect panicked: the caller never gets sub, so it leaves here.
			sub.Dispose()
		}
	}()

	r.run(next)

	ok = true

	return sub
}

// forward subscribes sub to the wrapped source.
// If the source panics, the subscriber count is restored, a connect decided for this subscription is
// abandoned, and the panic is propagated.
func (r *RefCountSource[T]) forward(sub *refCountSubscription[T], next transition) {
	ok := false

	defer func() {
		if ok {
			return
		}

		released := sub.detached.CompareAndSwap(false, true)

		r.mu.Lock()

		if released {
			r.count--
			r.options.metrics.observeSubscribers(r.options.name, r.count)
		}

		if next.kind == transitionConnect {
			r.abandonLocked(next.generation)
		}

		// Subscribers that arrived meanwhile may still need a connection, or the last one may have left.
		following := r.nextLocked()

		r.mu.Unlock()

		r.run(following)
	}()

	sub.upstream.Set(r.source.Subscribe(sub))

	ok = true
}

// release removes a subscriber.
func (r *RefCountSource[T]) release() {
	r.mu.Lock()

	r.count--
	r.options.metrics.observeSubscribers(r.options.name, r.count)

	next := r.nextLocked()

	r.mu.Unlock()

	r.run(next)
}

// cancelPendingLocked cancels a pending disconnect, returning its handle to be disposed outside the lock.
func (r *RefCountSource[T]) cancelPendingLocked() Disposable {
	if r.pending == nil {
		return nil
	}

	handle := r.pending.handle
	r.pending = nil

	r.options.metrics.disconnectCanceled(r.options.name)
	r.logger.Debug("disconnect canceled", "generation", r.generation, "subscribers", r.count)

	return handle
}

// nextLocked decides the next transition from the current state and count.
func (r *RefCountSource[T]) nextLocked() transition {
	switch r.state {
	case stateDisconnected:
		if r.count < r.options.minObservers {
			return transition{}
		}

		r.generation++
		r.state = stateConnecting

		return transition{
			kind:       transitionConnect,
			generation: r.generation,
		}

	case stateConnected:
		if r.count > 0 || r.pending != nil {
			return transition{}
		}

		if r.options.hasDelay {
			r.pending = &pendingDisconnect{generation: r.generation}

			r.options.metrics.disconnectScheduled(r.options.name)
			r.logger.Debug("disconnect scheduled", "generation", r.generation, "delay", r.options.delay)

			return transition{
				kind:       transitionSchedule,
				generation: r.generation,
				pending:    r.pending,
			}
		}

		return r.detachLocked()

	default:
		return transition{}
	}
}

// abandonLocked undoes a connect decided for generation that never happened.
func (r *RefCountSource[T]) abandonLocked(generation uint64) {
	if r.state != stateConnecting || r.generation != generation {
		return
	}

	r.state = stateDisconnected
	r.generation--
}

// detachLocked takes the live connection for disposal outside the lock.
func (r *RefCountSource[T]) detachLocked() transition {
	conn := r.conn

	r.conn = nil
	r.state = stateDisconnecting

	return transition{
		kind:       transitionDisconnect,
		generation: r.generation,
		conn:       conn,
	}
}

// run performs t, and the transitions that follow from it, outside the lock.
func (r *RefCountSource[T]) run(t transition) {
	for t.kind != transitionNone {
		switch t.kind {
		case transitionConnect:
			t = r.connect(t.generation)

		case transitionDisconnect:
			t = r.disconnect(t)

		case transitionSchedule:
			r.schedule(t.pending)
			t = transition{}
		}
	}
}

func (r *RefCountSource[T]) connect(generation uint64) transition {
	ok := false

	defer func() {
		if ok {
			return
		}

		r.mu.Lock()
		r.abandonLocked(generation)
		r.mu.Unlock()
	}()

	conn := r.source.Connect()

	ok = true

	r.mu.Lock()
	defer r.mu.Unlock()

	r.conn = conn
	r.state = stateConnected

	r.options.metrics.connected(r.options.name)
	r.logger.Debug("connected", "generation", generation, "subscribers", r.count)

	return r.nextLocked()
}

func (r *RefCountSource[T]) disconnect(t transition) transition {
	if t.conn != nil {
		t.conn.Dispose()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = stateDisconnected

	r.options.metrics.disconnected(r.options.name)
	r.logger.Debug("disconnected", "generation", t.generation, "subscribers", r.count)

	return r.nextLocked()
}

// schedule schedules p. The handle is kept only if p is still pending once scheduling has returned.
func (r *RefCountSource[T]) schedule(p *pendingDisconnect) {
	handle := r.options.scheduler.ScheduleAfter(r.options.delay, func() {
		r.fire(p)
	})

	r.mu.Lock()

	if r.pending == p {
		p.handle = handle
		r.mu.Unlock()

		return
	}

	r.mu.Unlock()

	handle.Dispose()
}

// fire runs a delayed disconnect. It is a no-op unless p is still the pending disconnect for the
// current generation and there are no subscribers.
func (r *RefCountSource[T]) fire(p *pendingDisconnect) {
	r.mu.Lock()

	if r.pending != p || r.generation != p.generation || r.count != 0 || r.state != stateConnected {
		r.mu.Unlock()
		return
	}

	r.pending = nil
	next := r.detachLocked()

	r.mu.Unlock()

	r.run(next)
}

// SubscriberCount returns the number of live subscriptions.
func (r *RefCountSource[T]) SubscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.count
}

// Connected returns true while a connection is live, including while a delayed disconnect is pending.
func (r *RefCountSource[T]) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state == stateConnected
}

// DisconnectPending returns true while a delayed disconnect is pending.
func (r *RefCountSource[T]) DisconnectPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pending != nil
}

// Generation returns the number of connections made so far.
// A connect abandoned because the wrapped source panicked is not counted.
func (r *RefCountSource[T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generation
}

// Name returns the name used in log records and metric labels.
func (r *RefCountSource[T]) Name() string {
	return r.options.name
}

// OnNext implements Observer.
func (s *refCountSubscription[T]) OnNext(elem T) {
	if s.detached.Load() {
		return
	}

	s.observer.OnNext(elem)
}

// OnError implements Observer.
func (s *refCountSubscription[T]) OnError(err error) {
	s.terminate(Error[T](err))
}

// OnCompleted implements Observer.
func (s *refCountSubscription[T]) OnCompleted() {
	s.terminate(Completed[T]())
}

// terminate leaves and then delivers n, unless the subscription has already left.
// The observer is no longer counted by the time it receives n.
func (s *refCountSubscription[T]) terminate(n Notification[T]) {
	if !s.detached.CompareAndSwap(false, true) {
		return
	}

	s.upstream.Dispose()
	s.parent.release()

	n.Accept(s.observer)
}

// IsStopped implements StoppableObserver.
func (s *refCountSubscription[T]) IsStopped() bool {
	return s.detached.Load() || Stopped(s.observer)
}

// Dispose implements Disposable.
func (s *refCountSubscription[T]) Dispose() {
	if !s.detached.CompareAndSwap(false, true) {
		return
	}

	s.upstream.Dispose()
	s.parent.release()
}
