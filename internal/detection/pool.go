package detection

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolSaturated is returned when the inference queue is full. Callers
// report it as a frame failure instead of queueing unboundedly.
var ErrPoolSaturated = errors.New("inference pool saturated")

var ErrPoolClosed = errors.New("inference pool closed")

// Pool runs CPU-bound inference work on a fixed set of workers so frame
// processing never blocks a session's message loop.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{
		tasks:  make(chan func(), queueSize),
		logger: logger.With("component", "inference-pool"),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	p.logger.Info("inference pool started", "workers", workers, "queue_size", queueSize)
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task without blocking. A submitted task always runs to
// completion, even if the submitting session disconnects first.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		p.mu.Unlock()
		return nil
	default:
		p.mu.Unlock()
		p.logger.Warn("inference queue full, rejecting task")
		return ErrPoolSaturated
	}
}

// QueueDepth returns the number of queued, not yet started tasks.
func (p *Pool) QueueDepth() int {
	return len(p.tasks)
}

func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
