package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ds18b20"
	"periph.io/x/host/v3"
)

const (
	familyDS18B20 = 0x28

	cmdSkipROM  = 0xcc
	cmdConvertT = 0x44
)

// DS18B20 is a single DS18B20 on a one-wire bus.
type DS18B20 struct {
	bus  onewire.BusCloser
	addr onewire.Address
	dev  *ds18b20.Dev
}

// OpenDS18B20 opens the named one-wire bus ("" for the first one) and binds
// the first DS18B20 found on it. Configure must be called before use.
func OpenDS18B20(busName string) (*DS18B20, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := onewirereg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open onewire bus %q: %w", busName, err)
	}
	addrs, err := bus.Search(false)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("search onewire bus: %w", err)
	}
	for _, a := range addrs {
		if a&0xff == familyDS18B20 {
			return &DS18B20{bus: bus, addr: a}, nil
		}
	}
	bus.Close()
	return nil, ErrNoDevice
}

// Configure writes the resolution to the sensor's configuration register.
func (s *DS18B20) Configure(resolution int) error {
	dev, err := ds18b20.New(s.bus, s.addr, resolution)
	if err != nil {
		return fmt.Errorf("configure ds18b20 %#016x: %w", uint64(s.addr), err)
	}
	s.dev = dev
	return nil
}

// StartConversion broadcasts Convert T. Unlike ds18b20.ConvertAll it does not
// sleep for the conversion time; the strong pull-up powers the sensor while
// the bus is otherwise idle.
func (s *DS18B20) StartConversion() error {
	if err := s.bus.Tx([]byte{cmdSkipROM, cmdConvertT}, nil, onewire.StrongPullup); err != nil {
		return fmt.Errorf("start conversion: %w", err)
	}
	return nil
}

// ReadResult reads the scratchpad of the last conversion.
func (s *DS18B20) ReadResult() (Temperature, error) {
	if s.dev == nil {
		return 0, fmt.Errorf("read ds18b20: not configured")
	}
	t, err := s.dev.LastTemp()
	if err != nil {
		return 0, fmt.Errorf("read ds18b20: %w", err)
	}
	return FromPhysic(t), nil
}

// Close releases the bus.
func (s *DS18B20) Close() error {
	return s.bus.Close()
}

// FromPhysic converts a periph temperature to sixteenths of a degree,
// truncating toward zero.
func FromPhysic(t physic.Temperature) Temperature {
	return Temperature(int64(t-physic.ZeroCelsius) * int64(Degree) / int64(physic.Kelvin))
}
