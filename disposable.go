package gostreams

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Disposable is a cancelable resource.
// Dispose must be idempotent and safe to call from any goroutine.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable.
// The function is called on every call to Dispose, use NewDisposable to call it only once.
type DisposableFunc func()

// Dispose implements Disposable.
func (f DisposableFunc) Dispose() {
	f()
}

type onceDisposable struct {
	once sync.Once
	fn   func()
}

// NewDisposable returns a Disposable that calls fn the first time it is disposed.
func NewDisposable(fn func()) Disposable {
	return &onceDisposable{fn: fn}
}

func (d *onceDisposable) Dispose() {
	d.once.Do(d.fn)
}

type nopDisposable struct{}

func (nopDisposable) Dispose() {}

// Disposed returns a Disposable that does nothing.
func Disposed() Disposable {
	return nopDisposable{}
}

// CompositeDisposable disposes a group of disposables together.
// The zero value is ready to use.
type CompositeDisposable struct {
	mu       sync.Mutex
	disposed bool
	members  []Disposable
}

// NewCompositeDisposable returns a composite containing the given disposables.
func NewCompositeDisposable(disposables ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{
		members: slices.Clone(disposables),
	}
}

// Add adds d to the composite.
// If the composite is already disposed, d is disposed immediately.
func (c *CompositeDisposable) Add(d Disposable) {
	c.mu.Lock()

	if c.disposed {
		c.mu.Unlock()
		d.Dispose()

		return
	}

	c.members = append(c.members, d)
	c.mu.Unlock()
}

// Remove removes d from the composite and disposes it.
// It returns false if d was not a member.
// Members are compared with ==, so d should be a pointer or another comparable value, not a DisposableFunc.
func (c *CompositeDisposable) Remove(d Disposable) bool {
	c.mu.Lock()

	index := slices.Index(c.members, d)
	if index < 0 {
		c.mu.Unlock()
		return false
	}

	c.members = slices.Delete(c.members, index, index+1)
	c.mu.Unlock()

	d.Dispose()

	return true
}

// Len returns the number of members.
func (c *CompositeDisposable) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.members)
}

// IsDisposed returns true once Dispose has been called.
func (c *CompositeDisposable) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.disposed
}

// Dispose disposes all members, in the order they were added.
// Members are disposed outside the composite's lock, so they may call back into it.
func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()

	if c.disposed {
		c.mu.Unlock()
		return
	}

	c.disposed = true

	members := c.members
	c.members = nil

	c.mu.Unlock()

	for _, d := range members {
		d.Dispose()
	}
}

// SingleAssignmentDisposable holds a disposable that is assigned at most once.
// It covers the window in which a subscription must be canceled before the call
// that creates it has returned.
// The zero value is ready to use.
type SingleAssignmentDisposable struct {
	mu       sync.Mutex
	disposed atomic.Bool
	assigned bool
	inner    Disposable
}

// Set assigns d. If the holder has already been disposed, d is disposed immediately.
// Set panics if called more than once.
func (s *SingleAssignmentDisposable) Set(d Disposable) {
	s.mu.Lock()

	if s.assigned {
		s.mu.Unlock()
		panic("disposable already assigned")
	}

	s.assigned = true

	if s.disposed.Load() {
		s.mu.Unlock()

		if d != nil {
			d.Dispose()
		}

		return
	}

	s.inner = d
	s.mu.Unlock()
}

// IsDisposed returns true once Dispose has been called.
func (s *SingleAssignmentDisposable) IsDisposed() bool {
	return s.disposed.Load()
}

// Dispose disposes the assigned disposable, if any, and any disposable assigned later.
func (s *SingleAssignmentDisposable) Dispose() {
	s.mu.Lock()

	if s.disposed.Swap(true) {
		s.mu.Unlock()
		return
	}

	inner := s.inner
	s.inner = nil

	s.mu.Unlock()

	if inner != nil {
		inner.Dispose()
	}
}
