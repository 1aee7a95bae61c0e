// Package workers provides a fixed-size goroutine pool for fork-join phases.
package workers

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidWorkers is returned by New for a non-positive worker count.
	ErrInvalidWorkers = errors.New("workers: invalid workers count")
	// ErrClosed is carried by tasks submitted after Close.
	ErrClosed = errors.New("workers: pool closed")
)

// queueDepth is the number of pending tasks buffered per worker.
const queueDepth = 4

// Task is the handle of a submitted function.
type Task struct {
	fn   func() error
	err  error
	done chan struct{}
}

// Wait blocks until the task has run and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

func (t *Task) run() {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	t.err = t.fn()
}

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	numWorkers int

	mu     sync.RWMutex
	closed bool
	queue  chan *Task     // pending tasks, drained by workers
	wg     sync.WaitGroup // tracks active workers
}

// New starts a pool with the given number of workers.
func New(numWorkers int) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, numWorkers)
	}

	p := &Pool{
		numWorkers: numWorkers,
		queue:      make(chan *Task, numWorkers*queueDepth),
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	slog.Debug("worker pool started", "workers", numWorkers)
	return p, nil
}

// worker runs tasks until the queue is closed and empty.
func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.queue {
		t.run()
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Submit enqueues fn and returns its handle. It may block while the queue is full.
func (p *Pool) Submit(fn func() error) *Task {
	t := &Task{fn: fn, done: make(chan struct{})}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		t.err = ErrClosed
		close(t.done)
		return t
	}
	p.queue <- t
	return t
}

// Run submits every fn and waits for all of them before returning.
// The returned error joins the errors of all failed tasks.
func (p *Pool) Run(fns ...func() error) error {
	tasks := make([]*Task, len(fns))
	for i, fn := range fns {
		tasks[i] = p.Submit(fn)
	}

	var errs []error
	for _, t := range tasks {
		if err := t.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops accepting tasks, lets queued tasks finish and joins the workers.
// Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	slog.Debug("worker pool stopped", "workers", p.numWorkers)
}
