package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

const deliveryTimeout = 30 * time.Second

var (
	// ErrQueueFull is returned when the dispatch buffer has no room.
	ErrQueueFull = errors.New("notification queue full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("notifier closed")
)

type job struct {
	ctx context.Context
	msg Message
}

// Async hands messages to a fixed pool of workers so callers never wait on
// delivery. Delivery errors are logged by the workers.
type Async struct {
	next   Notifier
	logger *zap.Logger
	jobs   chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Notifier, workers, size int, logger *zap.Logger) *Async {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Async{
		next:   next,
		logger: logger,
		jobs:   make(chan job, size),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.work()
	}
	return a
}

// Notify enqueues msg. It never blocks; a full buffer drops the message.
func (a *Async) Notify(ctx context.Context, msg Message) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.jobs <- job{ctx: context.WithoutCancel(ctx), msg: msg}:
		return nil
	default:
		a.logger.Warn("dropping notification", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return ErrQueueFull
	}
}

func (a *Async) work() {
	defer a.wg.Done()
	for j := range a.jobs {
		ctx, cancel := context.WithTimeout(j.ctx, deliveryTimeout)
		if err := a.next.Notify(ctx, j.msg); err != nil {
			a.logger.Warn("notification failed",
				zap.String("to", j.msg.To),
				zap.String("subject", j.msg.Subject),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close stops accepting messages, waits for queued ones to be delivered and
// closes the wrapped notifier when it holds resources.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()

	a.wg.Wait()
	if closer, ok := a.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
