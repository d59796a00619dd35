package pipeline

import (
	"context"
	"sync"
)

// EventProcessor handles one notification. Satisfied by *Processor.
type EventProcessor interface {
	Process(ctx context.Context, n Notification) Result
}

// Pool is a bounded worker pool draining notifications onto an
// EventProcessor.
//
// Enqueue never blocks: when the queue is full the notification is dropped
// with ErrQueueFull so the broker's network goroutine is never held up by a
// slow conversion.
//
// Thread Safety: all methods are safe for concurrent use.
type Pool struct {
	processor EventProcessor
	logger    Logger

	queue   chan Notification
	workers int

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewPool creates a Pool with the given worker count and queue capacity.
func NewPool(processor EventProcessor, workers, queueSize int) *Pool {
	return &Pool{
		processor: processor,
		logger:    noopLogger{},
		queue:     make(chan Notification, queueSize),
		workers:   workers,
	}
}

// SetLogger sets the logger for the pool.
func (p *Pool) SetLogger(logger Logger) {
	p.logger = logger
}

// Start launches the workers. The context bounds the lifetime of in-flight
// processing; cancelling it makes workers exit without draining the queue.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	p.logger.Info("worker pool started",
		"workers", p.workers,
		"queue_size", cap(p.queue),
	)
}

// Enqueue submits a notification for processing.
//
// Returns:
//   - error: ErrQueueFull if the queue is at capacity, ErrPoolStopped after
//     Stop, nil otherwise
func (p *Pool) Enqueue(n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- n:
		return nil
	default:
		p.logger.Warn("work queue full, dropping event",
			"camera", n.Camera,
			"event_id", n.EventID,
			"queue_size", cap(p.queue),
		)
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to drain it. Safe to call
// more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Backlog returns the number of queued, not yet picked up, notifications.
func (p *Pool) Backlog() int {
	return len(p.queue)
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-p.queue:
			if !ok {
				return
			}
			p.processor.Process(ctx, n)
		}
	}
}
