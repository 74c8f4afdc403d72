// Package button counts how long each front-panel button has been held and
// turns those counts into one-shot press events.
//
// The counters are written only by Sampler.Tick, which runs on the fast
// periodic interrupt. Everything else only reads them. Each counter lives
// in its own machine word so a read never sees a torn value.
package button

import (
	"sync/atomic"
	"time"

	"github.com/sweeney/thermo-alarm/internal/gpio"
)

// ID names a button.
type ID uint8

const (
	Up ID = iota
	Enter
	Down

	numButtons
)

func (id ID) String() string {
	switch id {
	case Up:
		return "up"
	case Enter:
		return "enter"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Hold thresholds in sampler ticks. At the default 8ms tick a short press
// is confirmed after 16ms and a long press after 160ms.
const (
	ShortPress uint8 = 2
	LongPress  uint8 = 20
)

// MaxCount is where a held button's counter stops.
const MaxCount = 255

// DefaultPeriod is the fast tick interval.
const DefaultPeriod = 8 * time.Millisecond

// Sampler holds the per-button press-duration counters.
type Sampler struct {
	inputs [numButtons]gpio.InputPin
	counts [numButtons]atomic.Uint32
	// presses counts press starts, written by Tick.
	presses [numButtons]atomic.Uint32
	// ignored is the press number Ignore last discarded, main loop only.
	ignored [numButtons]uint32

	// Idle is called between polls while WaitRelease spins. The default
	// sleeps for a millisecond.
	Idle func()
}

// NewSampler binds the three button inputs. Inputs are active low.
func NewSampler(up, enter, down gpio.InputPin) *Sampler {
	return &Sampler{
		inputs: [numButtons]gpio.InputPin{up, enter, down},
		Idle:   func() { time.Sleep(time.Millisecond) },
	}
}

// Tick samples every button once. It is the fast interrupt handler: a held
// button's counter increments up to MaxCount, a released one resets to 0.
func (s *Sampler) Tick() {
	for i, in := range s.inputs {
		c := &s.counts[i]
		if in.IsSet() {
			c.Store(0)
			continue
		}
		n := c.Load()
		if n == 0 {
			s.presses[i].Add(1)
		}
		if n < MaxCount {
			c.Store(n + 1)
		}
	}
}

// Count returns how many consecutive ticks id has been held.
func (s *Sampler) Count(id ID) uint8 {
	return uint8(s.counts[id].Load())
}

// Held reports whether id has been held for at least threshold ticks.
// It does not block and does not consume the press.
func (s *Sampler) Held(id ID, threshold uint8) bool {
	return s.Count(id) >= threshold
}

// Pressed reports a short press of id, see PressedFor.
func (s *Sampler) Pressed(id ID) bool {
	return s.PressedFor(id, ShortPress)
}

// PressedFor returns true once per physical press, as soon as the hold
// count reaches threshold. Before returning true it blocks in WaitRelease
// until the button is let go, so the whole main loop stalls for as long as
// the button stays down. A press discarded by Ignore never fires.
func (s *Sampler) PressedFor(id ID, threshold uint8) bool {
	if !s.Held(id, threshold) {
		return false
	}
	if s.presses[id].Load() == s.ignored[id] {
		return false
	}
	s.WaitRelease(id)
	return true
}

// Ignore discards the press of id currently in progress, if any, without
// waiting for release. Callers that stop polling a button use it so a hold
// that began meanwhile does not fire once polling resumes.
func (s *Sampler) Ignore(id ID) {
	if s.Count(id) > 0 {
		s.ignored[id] = s.presses[id].Load()
	}
}

// WaitRelease spins until the counter for id has been reset by a tick that
// saw the button released. There is no timeout.
func (s *Sampler) WaitRelease(id ID) {
	for s.Count(id) != 0 {
		s.Idle()
	}
}
