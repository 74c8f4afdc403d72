// Package irq emulates the controller's two periodic timer interrupts.
//
// All handlers run on a single goroutine, so one handler never preempts
// another, matching a single-priority interrupt controller. Handlers must
// be short and must not block: counter and flag updates only.
package irq

import (
	"context"
	"sync/atomic"
	"time"
)

// Handler is an interrupt service routine.
type Handler func()

// Vector is a periodic interrupt source.
type Vector struct {
	Name    string
	Period  time.Duration
	Handler Handler
}

// Dispatcher delivers the fast and slow vectors.
type Dispatcher struct {
	fast Vector
	slow Vector

	fastCount atomic.Uint64
	slowCount atomic.Uint64
}

// NewDispatcher creates a dispatcher for the two vectors.
func NewDispatcher(fast, slow Vector) *Dispatcher {
	return &Dispatcher{fast: fast, slow: slow}
}

// Run starts both timers and services them until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	fast := time.NewTicker(d.fast.Period)
	defer fast.Stop()
	slow := time.NewTicker(d.slow.Period)
	defer slow.Stop()

	d.serve(ctx, fast.C, slow.C)
}

// serve is Run with injectable tick channels.
func (d *Dispatcher) serve(ctx context.Context, fast, slow <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fast:
			d.fast.Handler()
			d.fastCount.Add(1)
		case <-slow:
			d.slow.Handler()
			d.slowCount.Add(1)
		}
	}
}

// Counts returns how many times each vector has fired.
func (d *Dispatcher) Counts() (fast, slow uint64) {
	return d.fastCount.Load(), d.slowCount.Load()
}
