package mqtt

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/sweeney/thermo-alarm/internal/logic"
)

// ErrQueueFull is returned when the publish queue has no room. The message
// is dropped.
var ErrQueueFull = errors.New("mqtt: publish queue full")

// DefaultQueueSize is the queue depth used by cmd/thermo-alarm.
const DefaultQueueSize = 32

type job struct {
	event  logic.Event
	system *SystemEvent
}

// Async decouples the control loop from the broker: Publish and
// PublishSystem only enqueue, and Run delivers on its own goroutine.
type Async struct {
	inner   Publisher
	queue   chan job
	dropped atomic.Uint64

	// Logf reports delivery failures. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewAsync wraps inner with a queue of the given depth.
func NewAsync(inner Publisher, size int) *Async {
	if size < 1 {
		size = 1
	}
	return &Async{
		inner: inner,
		queue: make(chan job, size),
		Logf:  log.Printf,
	}
}

// Publish enqueues an alarm event without blocking.
func (a *Async) Publish(event logic.Event) error {
	return a.enqueue(job{event: event})
}

// PublishSystem enqueues a system event without blocking.
func (a *Async) PublishSystem(event SystemEvent) error {
	return a.enqueue(job{system: &event})
}

func (a *Async) enqueue(j job) error {
	select {
	case a.queue <- j:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Run delivers queued messages until ctx is done, then delivers whatever is
// still queued and returns.
func (a *Async) Run(ctx context.Context) {
	for {
		select {
		case j := <-a.queue:
			a.deliver(j)
		case <-ctx.Done():
			a.flush()
			return
		}
	}
}

func (a *Async) flush() {
	for {
		select {
		case j := <-a.queue:
			a.deliver(j)
		default:
			return
		}
	}
}

func (a *Async) deliver(j job) {
	if j.system != nil {
		if err := a.inner.PublishSystem(*j.system); err != nil {
			a.Logf("mqtt: publish %s: %v", j.system.Event, err)
		}
		return
	}
	if err := a.inner.Publish(j.event); err != nil {
		a.Logf("mqtt: publish %s: %v", j.event.Type, err)
	}
}

// Dropped returns the number of messages rejected with ErrQueueFull.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// IsConnected reports the wrapped publisher's connection state, or false
// if it cannot tell.
func (a *Async) IsConnected() bool {
	if cs, ok := a.inner.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Close closes the wrapped publisher. Call it after Run has returned.
func (a *Async) Close() error {
	return a.inner.Close()
}
