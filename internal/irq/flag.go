package irq

import (
	"sync/atomic"
	"time"
)

// Flag is a one-shot handoff from an interrupt to the main loop. The
// interrupt only ever sets it and the main loop only ever clears it. A set
// landing between the main loop's check and its clear merges into the
// cycle already being handled.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag. Interrupt side.
func (f *Flag) Set() { f.v.Store(true) }

// IsSet reports whether the flag is raised.
func (f *Flag) IsSet() bool { return f.v.Load() }

// Clear lowers the flag. Main-loop side.
func (f *Flag) Clear() { f.v.Store(false) }

// DefaultConversionPeriod is the slow tick interval.
const DefaultConversionPeriod = 500 * time.Millisecond
