// Package gpio provides single-line digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation models a memory-mapped port register for tests.
package gpio

// OutputPin drives one output line. Every call forces the bound bit
// unconditionally; there is no error path, a failed hardware write is a
// wiring problem and not something the caller can act on.
type OutputPin interface {
	Set()
	Clear()
	Toggle()
}

// InputPin reads the live level of one input line.
type InputPin interface {
	// IsSet reports whether the line is electrically high.
	IsSet() bool
}

// Default line offsets (BCM numbering) for a Raspberry Pi header.
const (
	DefaultPinUp    = 5
	DefaultPinEnter = 6
	DefaultPinDown  = 13
	DefaultPinAlarm = 12

	DefaultPinRS = 25
	DefaultPinE  = 24
	DefaultPinD4 = 23
	DefaultPinD5 = 17
	DefaultPinD6 = 18
	DefaultPinD7 = 22
)
