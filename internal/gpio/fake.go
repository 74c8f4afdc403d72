package gpio

import "fmt"

// Port is an in-memory stand-in for an 8-bit I/O port: a direction register
// and a data register. Each bit may be bound to at most one pin.
type Port struct {
	Name string

	// DDR holds the direction bits, 1 = output.
	DDR uint8
	// Data holds the line levels. Output pins write it, tests drive
	// input bits through Drive.
	Data uint8

	// Writes counts read-modify-write cycles on Data by output pins.
	Writes int

	claimed uint8
}

// NewPort creates a port with all lines low and configured as inputs.
func NewPort(name string) *Port {
	return &Port{Name: name}
}

func (p *Port) claim(bit uint8) {
	if bit > 7 {
		panic(fmt.Sprintf("gpio: %s bit %d out of range", p.Name, bit))
	}
	if p.claimed&(1<<bit) != 0 {
		panic(fmt.Sprintf("gpio: %s bit %d already bound", p.Name, bit))
	}
	p.claimed |= 1 << bit
}

// Output binds bit as an output and returns its pin.
// It panics if the bit is already bound to another pin.
func (p *Port) Output(bit uint8) *FakeOutput {
	p.claim(bit)
	p.DDR |= 1 << bit
	return &FakeOutput{port: p, mask: 1 << bit}
}

// Input binds bit as an input and returns its pin.
// It panics if the bit is already bound to another pin.
func (p *Port) Input(bit uint8) *FakeInput {
	p.claim(bit)
	p.DDR &^= 1 << bit
	return &FakeInput{port: p, mask: 1 << bit}
}

// Drive sets the external level of an input bit.
func (p *Port) Drive(bit uint8, high bool) {
	if high {
		p.Data |= 1 << bit
	} else {
		p.Data &^= 1 << bit
	}
}

// Level reports the current level of bit.
func (p *Port) Level(bit uint8) bool {
	return p.Data&(1<<bit) != 0
}

// FakeOutput is an output pin bound to one bit of a Port.
type FakeOutput struct {
	port *Port
	mask uint8

	// OnChange, if set, is called after every write with the new level.
	OnChange func(high bool)
}

func (o *FakeOutput) write(v uint8) {
	o.port.Data = v
	o.port.Writes++
	if o.OnChange != nil {
		o.OnChange(o.IsHigh())
	}
}

// Set drives the line high.
func (o *FakeOutput) Set() { o.write(o.port.Data | o.mask) }

// Clear drives the line low.
func (o *FakeOutput) Clear() { o.write(o.port.Data &^ o.mask) }

// Toggle inverts the line.
func (o *FakeOutput) Toggle() { o.write(o.port.Data ^ o.mask) }

// IsHigh reports the level currently driven on the line.
func (o *FakeOutput) IsHigh() bool {
	return o.port.Data&o.mask != 0
}

// FakeInput is an input pin bound to one bit of a Port.
type FakeInput struct {
	port *Port
	mask uint8
}

// IsSet returns the live level of the bound bit.
func (i *FakeInput) IsSet() bool {
	return i.port.Data&i.mask != 0
}
