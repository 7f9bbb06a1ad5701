package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mysphere/internal/amqp"
	"mysphere/internal/log"
)

var (
	ErrPublishQueueFull = errors.New("record event queue is full")
	ErrPublisherClosed  = errors.New("record event publisher is closed")
)

// AsyncPublisher queues record events and publishes them from a single
// goroutine, so a write returns without waiting on the broker. Events reach
// the broker in the order they were queued.
type AsyncPublisher struct {
	next    EventPublisher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan *amqp.RecordEvent
	done   chan struct{}
}

// NewAsyncPublisher starts the publishing goroutine. Each event gets its own
// context bounded by timeout.
func NewAsyncPublisher(next EventPublisher, buffer int, timeout time.Duration) *AsyncPublisher {
	if buffer < 1 {
		buffer = 1
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		events:  make(chan *amqp.RecordEvent, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishRecordEvent queues event without blocking. The caller's context is
// not carried over: the request may finish before the event is sent.
func (p *AsyncPublisher) PublishRecordEvent(_ context.Context, event *amqp.RecordEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- event:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.PublishRecordEvent(ctx, event)
		cancel()
		if err != nil {
			slog.Warn("Failed to publish record event",
				log.NewFields().
					WithComponent(log.ComponentRecords).
					WithOperation(log.OpPublish).
					WithRecord(string(event.Kind), event.ID).
					WithError(err).
					ToSlice()...)
		}
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
