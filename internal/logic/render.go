package logic

import (
	"github.com/sweeney/thermo-alarm/internal/lcd"
	"github.com/sweeney/thermo-alarm/internal/sensor"
)

// Screen layout on the 16x2 panel.
const (
	rowTemperature = 0
	rowAlarm       = 1
	valueColumn    = 7
	glyphColumn    = 15

	labelTemperature = "Temp:"
	labelAlarm       = "Alarm:"
	// placeholder covers the whole "ddd,d°C" value field.
	placeholder = "OFF    "

	glyphPaused = "X"
	glyphBlank  = " "
	unitCelsius = "\xdfC"
)

// tenths maps the fraction nibble to a rounded tenths digit.
var tenths = [16]uint8{0, 1, 1, 2, 3, 3, 4, 4, 5, 6, 6, 7, 8, 8, 9, 9}

// Display is the part of the LCD driver the controller uses.
type Display interface {
	Command(c lcd.Command)
	Character(c byte)
	GotoXY(x, y uint8)
	WriteString(s string)
	WriteUint(v uint32, width uint8, fill byte, base uint8)
}

// renderTemperature writes t as "ddd,d°C" at the value column of row y.
// Negative values get a minus sign in front of the first digit.
func renderTemperature(d Display, y uint8, t sensor.Temperature) {
	neg := t < 0
	abs := int32(t)
	if neg {
		abs = -abs
	}

	var whole [3]byte
	lcd.FormatUint(whole[:], uint32(abs>>4), ' ', 10)
	if neg {
		i := 0
		for i < len(whole) && whole[i] == ' ' {
			i++
		}
		if i > 0 {
			i--
		}
		whole[i] = '-'
	}

	d.GotoXY(valueColumn, y)
	for _, c := range whole {
		d.Character(c)
	}
	d.WriteString(",")
	d.WriteUint(uint32(tenths[abs&0xf]), 1, ' ', 10)
	d.WriteString(unitCelsius)
}

func renderLabels(d Display) {
	d.GotoXY(0, rowTemperature)
	d.WriteString(labelTemperature)
	d.GotoXY(0, rowAlarm)
	d.WriteString(labelAlarm)
}

func renderAlarm(d Display, threshold sensor.Temperature, enabled bool) {
	if !enabled {
		d.GotoXY(valueColumn, rowAlarm)
		d.WriteString(placeholder)
		return
	}
	renderTemperature(d, rowAlarm, threshold)
}

func renderGlyph(d Display, glyph string) {
	d.GotoXY(glyphColumn, rowAlarm)
	d.WriteString(glyph)
}
