package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed queue.
var ErrClosed = errors.New("world: queue closed")

type task struct {
	fn   func() error
	done chan error
}

// Queue runs submitted functions one at a time on a single goroutine,
// in submission order.
type Queue struct {
	mu     sync.RWMutex
	ch     chan task
	wg     sync.WaitGroup
	once   sync.Once
	closed bool
}

// NewQueue starts the queue goroutine.
func NewQueue() *Queue {
	q := &Queue{ch: make(chan task, 64)}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.loop()
	}()
	return q
}

func (q *Queue) loop() {
	for t := range q.ch {
		t.done <- run(t.fn)
	}
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("world: task panicked: %v", r)
		}
	}()
	return fn()
}

// Submit enqueues fn and waits for it to finish. A ctx that is already done
// rejects fn; otherwise ctx only bounds the wait for a queue slot, and once
// accepted fn always runs to completion.
func (q *Queue) Submit(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := task{fn: fn, done: make(chan error, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosed
	}
	select {
	case q.ch <- t:
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}
	q.mu.RUnlock()

	return <-t.done
}

// Close stops accepting work, runs what is already queued and waits for
// the goroutine to exit.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()
		q.wg.Wait()
	})
}
