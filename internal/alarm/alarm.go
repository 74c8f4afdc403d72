// Package alarm drives the binary alarm output line.
package alarm

import (
	"sync"

	"github.com/sweeney/thermo-alarm/internal/gpio"
)

// Output is an alarm line the controller can assert and release.
type Output interface {
	Assert()
	Deassert()
}

// Steady holds the line high while asserted.
type Steady struct {
	pin gpio.OutputPin
}

// NewSteady drives pin low and returns the output.
func NewSteady(pin gpio.OutputPin) *Steady {
	pin.Clear()
	return &Steady{pin: pin}
}

// Assert drives the line high.
func (s *Steady) Assert() { s.pin.Set() }

// Deassert drives the line low.
func (s *Steady) Deassert() { s.pin.Clear() }

// Beeper pulses a buzzer: while asserted, every slow tick inverts the line.
// The main loop arms and disarms it and the slow interrupt toggles the pin;
// mu serialises the two writers.
type Beeper struct {
	pin gpio.OutputPin

	mu    sync.Mutex
	armed bool
}

// NewBeeper drives pin low and returns a disarmed beeper.
func NewBeeper(pin gpio.OutputPin) *Beeper {
	pin.Clear()
	return &Beeper{pin: pin}
}

// Assert arms the beeper. The line starts toggling on the next tick.
func (b *Beeper) Assert() {
	b.mu.Lock()
	b.armed = true
	b.mu.Unlock()
}

// Deassert disarms the beeper and drives the line low at once.
func (b *Beeper) Deassert() {
	b.mu.Lock()
	b.armed = false
	b.pin.Clear()
	b.mu.Unlock()
}

// Armed reports whether the beeper is asserted.
func (b *Beeper) Armed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armed
}

// Tick is called from the slow interrupt.
func (b *Beeper) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.armed {
		b.pin.Toggle()
		return
	}
	b.pin.Clear()
}
