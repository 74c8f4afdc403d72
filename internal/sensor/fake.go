package sensor

import "errors"

// FakeSensor is a test double. A conversion started by StartConversion
// latches the pending reading, and ReadResult returns the latched value,
// so a Read always sees the temperature as of the previous Start.
type FakeSensor struct {
	// Next is what the next conversion will measure.
	Next Temperature

	// Resolution is the value passed to Configure.
	Resolution int

	// Starts and Reads count calls.
	Starts int
	Reads  int

	// ReadError, if set, is returned by ReadResult.
	ReadError error

	latched   Temperature
	converted bool
}

// NewFakeSensor creates a sensor that will measure t.
func NewFakeSensor(t Temperature) *FakeSensor {
	return &FakeSensor{Next: t}
}

// Configure records the resolution.
func (f *FakeSensor) Configure(resolution int) error {
	if resolution < Resolution9 || resolution > Resolution12 {
		return errors.New("sensor: invalid resolution")
	}
	f.Resolution = resolution
	return nil
}

// StartConversion latches Next.
func (f *FakeSensor) StartConversion() error {
	f.Starts++
	f.latched = f.Next
	f.converted = true
	return nil
}

// ReadResult returns the value latched by the last StartConversion.
func (f *FakeSensor) ReadResult() (Temperature, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if !f.converted {
		return 0, errors.New("sensor: read before conversion")
	}
	return f.latched, nil
}
