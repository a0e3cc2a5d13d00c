// Package async bridges callbacks and waiting code: a one-shot channel that
// completes exactly once, and a queue of tasks deferred to the UI loop.
package async

import (
	"context"
	"errors"
	"sync"
)

// ErrCanceled is returned by Await when the sender was closed without a
// value.
var ErrCanceled = errors.New("async: sender dropped")

type oneshot[T any] struct {
	mu   sync.Mutex
	done chan struct{}
	val  T
	err  error
	set  bool
}

func (o *oneshot[T]) complete(v T, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.set {
		return false
	}
	o.val, o.err, o.set = v, err, true
	close(o.done)
	return true
}

// Sender is the producing half of a one-shot channel.
type Sender[T any] struct {
	o *oneshot[T]
}

// Receiver is the consuming half of a one-shot channel.
type Receiver[T any] struct {
	o *oneshot[T]
}

// NewOneshot returns a connected sender and receiver.
func NewOneshot[T any]() (*Sender[T], *Receiver[T]) {
	o := &oneshot[T]{done: make(chan struct{})}
	return &Sender[T]{o: o}, &Receiver[T]{o: o}
}

// Send completes the channel with v. Only the first Send or Close has an
// effect; Send reports whether it was that one.
func (s *Sender[T]) Send(v T) bool {
	return s.o.complete(v, nil)
}

// Close drops the sender. A receiver still waiting fails with ErrCanceled.
func (s *Sender[T]) Close() {
	var zero T
	s.o.complete(zero, ErrCanceled)
}

// Await blocks until the sender completes or ctx ends.
func (r *Receiver[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.o.done:
		return r.o.val, r.o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the sender has completed.
func (r *Receiver[T]) Done() <-chan struct{} {
	return r.o.done
}

// Ready reports whether the sender has completed.
func (r *Receiver[T]) Ready() bool {
	select {
	case <-r.o.done:
		return true
	default:
		return false
	}
}

// Call hands a fresh sender to send and returns the paired receiver.
func Call[T any](send func(*Sender[T])) *Receiver[T] {
	s, r := NewOneshot[T]()
	send(s)
	return r
}
