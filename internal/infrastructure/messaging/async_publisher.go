package messaging

import (
	"context"
	"errors"
	"expvar"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
	ErrQueueFull       = errors.New("event queue full")
)

// exported on /debug/vars
var eventMetrics = expvar.NewMap("user_events")

// Sender delivers one event to the transport and blocks until it is accepted or fails.
type Sender interface {
	Send(ctx context.Context, event entity.UserEvent) error
}

// Stats is a snapshot of a publisher's counters.
type Stats struct {
	Published int64
	Dropped   int64
	Failed    int64
}

// AsyncPublisher decouples callers from the transport: Publish only enqueues,
// and a fixed set of workers drains the queue through the Sender.
type AsyncPublisher struct {
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration

	queue chan entity.UserEvent
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewAsyncPublisher(sender Sender, logger *logrus.Logger, buffer, workers int, timeout time.Duration) *AsyncPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if buffer < 1 {
		buffer = 1
	}
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := &AsyncPublisher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan entity.UserEvent, buffer),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Publish never blocks. It fails when the queue is full or the publisher is closed.
func (p *AsyncPublisher) Publish(event entity.UserEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.drop()
		return ErrPublisherClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		p.drop()
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until queued ones have been sent
// or ctx is done.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AsyncPublisher) Stats() Stats {
	return Stats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *AsyncPublisher) worker() {
	defer p.wg.Done()
	for event := range p.queue {
		p.send(event)
	}
}

func (p *AsyncPublisher) send(event entity.UserEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.sender.Send(ctx, event); err != nil {
		p.failed.Add(1)
		eventMetrics.Add("failed", 1)
		p.logger.WithError(err).
			WithField("operation", event.Operation).
			Error("user event send failed")
		return
	}
	p.published.Add(1)
	eventMetrics.Add("published", 1)
	p.logger.WithField("operation", event.Operation).Debug("user event sent")
}

func (p *AsyncPublisher) drop() {
	p.dropped.Add(1)
	eventMetrics.Add("dropped", 1)
}
