package gostreams

import "sync"

// ConnectableSource is a source that does not start emitting until Connect is called.
// After Connect, it multicasts a single execution of its upstream to all subscribed observers.
// Disposing the Disposable returned by Connect disconnects from the upstream.
type ConnectableSource[T any] interface {
	Source[T]
	Connect() Disposable
}

// Published is a ConnectableSource that multicasts an upstream source through a single Subject.
//
// The subject lives as long as the Published value: once the upstream has terminated, observers
// subscribing later receive the terminal notification immediately, even after a reconnect.
type Published[T any] struct {
	source  Source[T]
	subject *Subject[T]

	mu   sync.Mutex
	conn *publishedConnection[T]
}

type publishedConnection[T any] struct {
	parent   *Published[T]
	upstream SingleAssignmentDisposable
	once     sync.Once
}

// Publish returns a connectable source that multicasts src.
func Publish[T any](src Source[T]) *Published[T] {
	return &Published[T]{
		source:  src,
		subject: NewSubject[T](),
	}
}

// Share returns a source that multicasts src, connecting to it while it has subscribers.
// It is equivalent to RefCount(Publish(src), opts...).
func Share[T any](src Source[T], opts ...RefCountOption) (*RefCountSource[T], error) {
	return RefCount[T](Publish(src), opts...)
}

// Subscribe implements Source.
func (p *Published[T]) Subscribe(o Observer[T]) Disposable {
	return p.subject.Subscribe(o)
}

// Connect subscribes the subject to the upstream source.
// If p is already connected, it returns the live connection.
func (p *Published[T]) Connect() Disposable {
	p.mu.Lock()

	if p.conn != nil {
		conn := p.conn
		p.mu.Unlock()

		return conn
	}

	conn := &publishedConnection[T]{parent: p}
	p.conn = conn

	p.mu.Unlock()

	conn.upstream.Set(p.source.Subscribe(p.subject))

	return conn
}

// Connected returns true while a connection is live.
func (p *Published[T]) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn != nil
}

func (c *publishedConnection[T]) Dispose() {
	c.once.Do(func() {
		c.parent.mu.Lock()
		if c.parent.conn == c {
			c.parent.conn = nil
		}
		c.parent.mu.Unlock()

		c.upstream.Dispose()
	})
}
