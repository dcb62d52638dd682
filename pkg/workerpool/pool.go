// Package workerpool provides a small fixed-size worker pool for running
// independent tasks with bounded concurrency.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Common errors
var (
	ErrPoolClosed  = errors.New("workerpool: pool is closed")
	ErrInvalidSize = errors.New("workerpool: invalid pool size")
	ErrTaskPanic   = errors.New("workerpool: task panicked")
)

// Task is a unit of work executed by the pool.
type Task func(ctx context.Context) error

// Pool is a fixed-size worker pool. Workers run until Shutdown.
type Pool struct {
	tasks  chan taskWrapper
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

type taskWrapper struct {
	task   Task
	result chan error
	ctx    context.Context
}

// New creates and starts a pool with the given number of workers.
func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan taskWrapper),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p, nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case wrapper, ok := <-p.tasks:
			if !ok {
				return
			}
			wrapper.result <- p.run(wrapper)
		}
	}
}

func (p *Pool) run(wrapper taskWrapper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrTaskPanic
		}
	}()

	if ctxErr := wrapper.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return wrapper.task(wrapper.ctx)
}

// Submit enqueues a task and returns a channel delivering its result.
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan error, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	wrapper := taskWrapper{
		task:   task,
		result: make(chan error, 1),
		ctx:    ctx,
	}

	select {
	case p.tasks <- wrapper:
		return wrapper.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrPoolClosed
	}
}

// Shutdown stops the workers. Queued but unstarted tasks are dropped.
func (p *Pool) Shutdown() {
	if p.closed.CompareAndSwap(false, true) {
		p.cancel()
		p.wg.Wait()
	}
}
