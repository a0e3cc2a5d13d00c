package async

import (
	"sync"
)

// Queue is a FIFO of deferred tasks. Any goroutine may Post; the UI loop
// runs them with Drain.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	notify chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends fn. It never runs fn itself.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain runs queued tasks in order until the queue is empty, including
// tasks posted while draining, and returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return n
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
		n++
	}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Ready receives a value after a Post. It is a hint: the queue may already
// have been drained when it fires.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}

// Emit posts fn to q and returns the receiver fn's sender completes. fn
// runs on the next Drain, never during Emit.
func Emit[T any](q *Queue, fn func(*Sender[T])) *Receiver[T] {
	return Call(func(s *Sender[T]) {
		q.Post(func() { fn(s) })
	})
}
