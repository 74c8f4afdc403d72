package logic

import (
	"fmt"

	"github.com/sweeney/thermo-alarm/internal/eeprom"
	"github.com/sweeney/thermo-alarm/internal/sensor"
)

// DefaultThreshold is used when the threshold cell was never written.
const DefaultThreshold = 23 * sensor.Degree

// The threshold is kept within the DS18B20's measuring range. Values
// outside it could never trigger, and the display field has room for
// at most two digits after a minus sign.
const (
	MinThreshold = -55 * sensor.Degree
	MaxThreshold = 125 * sensor.Degree
)

// Settings are the persisted alarm settings.
type Settings struct {
	Threshold sensor.Temperature
	Enabled   bool
}

// LoadSettings reads the settings. An erased threshold cell yields
// DefaultThreshold; any other value is clamped to the threshold range.
// An erased flag cell reads nonzero, so a fresh device starts with the
// alarm disabled.
func LoadSettings(s eeprom.Storage) Settings {
	st := Settings{Threshold: DefaultThreshold}
	if w := s.ReadWord(eeprom.AddrAlarmThreshold); w != eeprom.ErasedWord {
		st.Threshold = min(max(sensor.Temperature(int16(w)), MinThreshold), MaxThreshold)
	}
	st.Enabled = s.ReadByte(eeprom.AddrAlarmOff) == 0
	return st
}

// SaveSettings writes the threshold and then the flag. The two cells are
// updated independently; losing power between them leaves the new
// threshold with the old flag.
func SaveSettings(s eeprom.Storage, st Settings) error {
	if err := s.UpdateWord(eeprom.AddrAlarmThreshold, uint16(st.Threshold)); err != nil {
		return fmt.Errorf("save threshold: %w", err)
	}
	var off uint8
	if !st.Enabled {
		off = 1
	}
	if err := s.UpdateByte(eeprom.AddrAlarmOff, off); err != nil {
		return fmt.Errorf("save alarm flag: %w", err)
	}
	return nil
}
