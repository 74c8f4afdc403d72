// Package sensor is the boundary to the one-wire temperature sensor.
//
// A conversion takes longer than the main loop can wait for, so the
// protocol is split: StartConversion kicks one off and returns, and a later
// ReadResult collects it. Callers must not Read before the first Start.
package sensor

import (
	"errors"
	"fmt"
	"time"
)

// Temperature is a signed fixed-point Celsius value in sixteenths of a
// degree: the low 4 bits are the fraction, the rest the whole degrees.
// It is the sensor's native register format.
type Temperature int16

// Degree is one whole degree.
const Degree Temperature = 1 << 4

// Whole returns t as whole degrees, c.
func Whole(c int) Temperature {
	return Temperature(c) * Degree
}

// Celsius returns t as a float for logs and JSON.
func (t Temperature) Celsius() float64 {
	return float64(t) / float64(Degree)
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.4g°C", t.Celsius())
}

// Valid resolutions in bits. Higher resolution means a longer conversion:
// 94ms at 9 bits up to 750ms at 12.
const (
	Resolution9  = 9
	Resolution10 = 10
	Resolution11 = 11
	Resolution12 = 12
)

// ErrNoDevice is returned when no sensor answers on the bus.
var ErrNoDevice = errors.New("sensor: no DS18B20 on bus")

// Sensor is a temperature sensor with split conversion.
type Sensor interface {
	// Configure sets the conversion resolution in bits.
	Configure(resolution int) error
	// StartConversion begins a conversion and returns without waiting.
	StartConversion() error
	// ReadResult returns the result of the last finished conversion.
	ReadResult() (Temperature, error)
}

// ConversionTime is the worst-case conversion time at the given resolution.
func ConversionTime(resolution int) time.Duration {
	if resolution < Resolution9 || resolution > Resolution12 {
		resolution = Resolution12
	}
	return 750 * time.Millisecond >> (Resolution12 - resolution)
}
