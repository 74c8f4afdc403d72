package lcd

import "github.com/sweeney/thermo-alarm/internal/gpio"

// Port bits used by the emulator's pins.
const (
	bitRS = iota
	bitE
	bitD4
	bitD5
	bitD6
	bitD7
)

// Emulator decodes the bus traffic of a Display into HD44780 state: display
// RAM, cursor address, bus width and display control flags. It latches on
// the falling edge of E like the real controller, so a driver that gets the
// nibble order or the strobe wrong produces visibly wrong text.
type Emulator struct {
	port *gpio.Port
	pins Pins

	ram     [128]byte
	addr    uint8
	fourBit bool
	half    bool
	pending uint8
	eHigh   bool

	// DisplayOn, CursorOn and Blink mirror the last display control
	// instruction.
	DisplayOn bool
	CursorOn  bool
	Blink     bool
	// TwoLine mirrors the last function set.
	TwoLine bool
	// Shift counts display shifts right minus shifts left.
	Shift int

	// Wakeups counts 8-bit function sets received while in 8-bit mode.
	Wakeups int
	// Commands logs every instruction byte, in order.
	Commands []uint8
	// Chars counts data bytes written.
	Chars int
}

// NewEmulator returns a powered-up controller in 8-bit mode with blank RAM.
func NewEmulator() *Emulator {
	em := &Emulator{port: gpio.NewPort("lcd")}
	for i := range em.ram {
		em.ram[i] = ' '
	}
	e := em.port.Output(bitE)
	e.OnChange = em.strobe
	em.pins = Pins{
		RS: em.port.Output(bitRS),
		E:  e,
		D4: em.port.Output(bitD4),
		D5: em.port.Output(bitD5),
		D6: em.port.Output(bitD6),
		D7: em.port.Output(bitD7),
	}
	return em
}

// Pins returns the bus lines to hand to New.
func (em *Emulator) Pins() Pins {
	return em.pins
}

func (em *Emulator) strobe(high bool) {
	falling := em.eHigh && !high
	em.eHigh = high
	if falling {
		em.latch()
	}
}

func (em *Emulator) latch() {
	var n uint8
	for i, bit := range []uint8{bitD4, bitD5, bitD6, bitD7} {
		if em.port.Level(bit) {
			n |= 1 << i
		}
	}
	rs := em.port.Level(bitRS)

	if !em.fourBit {
		// D0-D3 are not connected and read as zero.
		em.exec(rs, n<<4)
		return
	}
	if !em.half {
		em.pending = n
		em.half = true
		return
	}
	em.half = false
	em.exec(rs, em.pending<<4|n)
}

func (em *Emulator) exec(rs bool, b uint8) {
	if rs {
		em.ram[em.addr] = b
		em.addr = (em.addr + 1) & 0x7f
		em.Chars++
		return
	}

	em.Commands = append(em.Commands, b)
	switch {
	case b&0x80 != 0:
		em.addr = b & 0x7f
	case b&0x40 != 0:
		// character generator RAM, not modelled
	case b&0x20 != 0:
		if !em.fourBit && b&0x10 != 0 {
			em.Wakeups++
		}
		em.fourBit = b&0x10 == 0
		em.TwoLine = b&0x08 != 0
	case b&0x10 != 0:
		step := -1
		if b&0x04 != 0 {
			step = 1
		}
		if b&0x08 != 0 {
			em.Shift += step
		} else {
			em.addr = uint8(int(em.addr)+step) & 0x7f
		}
	case b&0x08 != 0:
		em.DisplayOn = b&0x04 != 0
		em.CursorOn = b&0x02 != 0
		em.Blink = b&0x01 != 0
	case b&0x04 != 0:
		// entry mode, the driver only uses the power-on default
	case b&0x02 != 0:
		em.addr = 0
		em.Shift = 0
	case b&0x01 != 0:
		for i := range em.ram {
			em.ram[i] = ' '
		}
		em.addr = 0
		em.Shift = 0
	}
}

// FourBit reports whether the controller is in 4-bit bus mode.
func (em *Emulator) FourBit() bool {
	return em.fourBit
}

// Address returns the cursor's display RAM address.
func (em *Emulator) Address() uint8 {
	return em.addr
}

// RAM returns a copy of display RAM.
func (em *Emulator) RAM() [128]byte {
	return em.ram
}

// Line returns the first cols characters of row y.
func (em *Emulator) Line(y uint8, cols int) string {
	base := int(RowAddress(0, y))
	out := make([]byte, cols)
	for i := range out {
		out[i] = em.ram[(base+i)&0x7f]
	}
	return string(out)
}
