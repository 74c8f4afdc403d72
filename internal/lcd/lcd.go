// Package lcd drives an HD44780-compatible character display over a 4-bit
// parallel bus: register-select, enable strobe and data lines D4-D7.
//
// Every delay below is a minimum from the controller datasheet. Shorter
// delays do not fail loudly, the panel just shows garbage.
package lcd

import (
	"time"

	"github.com/sweeney/thermo-alarm/internal/gpio"
)

const (
	powerOnDelay   = 50 * time.Millisecond
	wakeFirstDelay = 4500 * time.Microsecond
	wakeDelay      = 150 * time.Microsecond
	strobeHold     = 1 * time.Microsecond
	settleDelay    = 100 * time.Microsecond
	slowDelay      = 2 * time.Millisecond
)

// wakeNibble is the high nibble of an 8-bit function set; modeNibble
// switches the bus to 4-bit.
const (
	wakeNibble = 0x3
	modeNibble = 0x2
)

// Pins are the six lines between the host and the display.
type Pins struct {
	RS gpio.OutputPin
	E  gpio.OutputPin
	D4 gpio.OutputPin
	D5 gpio.OutputPin
	D6 gpio.OutputPin
	D7 gpio.OutputPin
}

// Display is a write-only text display. It is not safe for concurrent use.
type Display struct {
	pins  Pins
	sleep func(time.Duration)
	buf   [255]byte
}

// Option configures a Display.
type Option func(*Display)

// WithSleep replaces time.Sleep, mainly so tests can record delays.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Display) { d.sleep = sleep }
}

// New runs the power-on initialisation sequence and returns a cleared
// display with the cursor hidden. The sequence is not retried; a panel
// that missed it recovers only on the next power cycle.
func New(pins Pins, opts ...Option) *Display {
	d := &Display{pins: pins, sleep: time.Sleep}
	for _, opt := range opts {
		opt(d)
	}
	d.init()
	return d
}

func (d *Display) init() {
	d.sleep(powerOnDelay)

	// Three 8-bit function sets force a known state whatever the
	// controller was doing, then one more nibble selects 4-bit mode.
	d.pins.RS.Clear()
	d.nibble(wakeNibble)
	d.strobe()
	d.sleep(wakeFirstDelay)
	d.strobe()
	d.sleep(wakeDelay)
	d.strobe()
	d.sleep(wakeDelay)

	d.nibble(modeNibble)
	d.strobe()
	d.sleep(wakeDelay)

	d.Command(FunctionSet4Bit2Line)
	d.Command(DisplayOn)
	d.Command(Clear)
}

// strobe latches the data lines with a low-high-low pulse on E.
func (d *Display) strobe() {
	d.pins.E.Clear()
	d.sleep(strobeHold)
	d.pins.E.Set()
	d.sleep(strobeHold)
	d.pins.E.Clear()
	d.sleep(settleDelay)
}

func level(p gpio.OutputPin, on bool) {
	if on {
		p.Set()
	} else {
		p.Clear()
	}
}

// nibble puts the low four bits of n on D7-D4.
func (d *Display) nibble(n uint8) {
	level(d.pins.D7, n&0x8 != 0)
	level(d.pins.D6, n&0x4 != 0)
	level(d.pins.D5, n&0x2 != 0)
	level(d.pins.D4, n&0x1 != 0)
}

func (d *Display) send(b uint8) {
	d.nibble(b >> 4)
	d.strobe()
	d.nibble(b)
	d.strobe()
}

// Command sends an instruction.
func (d *Display) Command(c Command) {
	d.pins.RS.Clear()
	d.send(uint8(c))
	if c.slow() {
		d.sleep(slowDelay)
	}
}

// Character writes one byte of the character ROM at the cursor, which then
// advances. Values above 0x7F select the extended glyphs.
func (d *Display) Character(c byte) {
	d.pins.RS.Set()
	d.send(c)
}

// GotoXY moves the cursor to column x of row y.
func (d *Display) GotoXY(x, y uint8) {
	d.Command(SetAddress | Command(RowAddress(x, y)))
}

// WriteString writes s byte by byte, stopping early at a NUL.
func (d *Display) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return
		}
		d.Character(s[i])
	}
}

// WriteUint writes v in a field exactly width characters wide, see
// FormatUint.
func (d *Display) WriteUint(v uint32, width uint8, fill byte, base uint8) {
	buf := d.buf[:width]
	FormatUint(buf, v, fill, base)
	for _, c := range buf {
		d.Character(c)
	}
}

// WriteDec writes v in decimal, space padded to width.
func (d *Display) WriteDec(v uint32, width uint8) {
	d.WriteUint(v, width, ' ', 10)
}
