//go:build linux

package gpio

import (
	"fmt"
	"log"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Chip hands out lines of one GPIO character device. The kernel refuses a
// second request for a line that is already held, so each physical line
// has at most one pin for the life of the process.
type Chip struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	lines []*gpiocdev.Line
}

// OpenChip opens the named GPIO chip, e.g. "gpiochip0".
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("thermo-alarm"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &Chip{chip: chip}, nil
}

func (c *Chip) track(l *gpiocdev.Line) {
	c.mu.Lock()
	c.lines = append(c.lines, l)
	c.mu.Unlock()
}

// Output requests offset as an output, initially low.
func (c *Chip) Output(offset int) (*RealOutput, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", offset, err)
	}
	c.track(line)
	return &RealOutput{line: line, offset: offset}, nil
}

// Input requests offset as an input. Buttons are wired active-low, so
// pullUp enables the internal bias resistor.
func (c *Chip) Input(offset int, pullUp bool) (*RealInput, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if pullUp {
		opts = append(opts, gpiocdev.WithPullUp)
	}
	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", offset, err)
	}
	c.track(line)
	return &RealInput{line: line, offset: offset}, nil
}

// Close releases every requested line and then the chip.
// Lines are returned to inputs first so the alarm and LCD lines are not
// left driven after exit.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, l := range c.lines {
		if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", l.Offset(), err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", l.Offset(), err))
		}
	}
	c.lines = nil
	if err := c.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput is an output line on a GPIO chip. The driven level is cached
// so Toggle needs no read back from the kernel.
type RealOutput struct {
	line   *gpiocdev.Line
	offset int
	level  int
	failed bool
}

func (o *RealOutput) write(v int) {
	if err := o.line.SetValue(v); err != nil {
		if !o.failed {
			log.Printf("gpio: write pin %d: %v", o.offset, err)
			o.failed = true
		}
		return
	}
	o.level = v
}

// Set drives the line high.
func (o *RealOutput) Set() { o.write(1) }

// Clear drives the line low.
func (o *RealOutput) Clear() { o.write(0) }

// Toggle inverts the line.
func (o *RealOutput) Toggle() { o.write(o.level ^ 1) }

// RealInput is an input line on a GPIO chip.
type RealInput struct {
	line   *gpiocdev.Line
	offset int
	failed bool
}

// IsSet returns the live line level. A failed read reports high, which
// for the pulled-up buttons means released.
func (i *RealInput) IsSet() bool {
	v, err := i.line.Value()
	if err != nil {
		if !i.failed {
			log.Printf("gpio: read pin %d: %v", i.offset, err)
			i.failed = true
		}
		return true
	}
	return v != 0
}
