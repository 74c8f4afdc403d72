package lcd

// Command is an HD44780 instruction byte sent with register-select low.
// The values are the controller's bit patterns and must not change.
type Command uint8

const (
	// Clear blanks the whole display and homes the cursor. Slow.
	Clear Command = 0b0000_0001
	// Home returns the cursor and any display shift to the origin. Slow.
	Home Command = 0b0000_0010

	// Display control, display on.
	CursorOn      Command = 0b0000_1110
	CursorOnBlink Command = 0b0000_1111
	CursorBlink   Command = 0b0000_1101
	CursorOff     Command = 0b0000_1100
	DisplayOn     Command = 0b0000_1100
	DisplayOff    Command = 0b0000_1000

	// Cursor and display shift.
	CursorLeft   Command = 0b0001_0000
	CursorRight  Command = 0b0001_0100
	DisplayLeft  Command = 0b0001_1000
	DisplayRight Command = 0b0001_1100

	// FunctionSet4Bit2Line selects a 4-bit bus, two display lines and the
	// 5x8 font.
	FunctionSet4Bit2Line Command = 0b0010_1000

	// SetAddress is OR-ed with a display RAM address.
	SetAddress Command = 0b1000_0000
)

// slow reports whether the instruction needs the long execution delay.
// Clear and Home are the only instructions in the low range.
func (c Command) slow() bool {
	return c < 4
}

// Display RAM base address of each row. Rows 2 and 3 continue rows 0 and 1
// on 20-column panels.
const (
	Row0 uint8 = 0x00
	Row1 uint8 = 0x40
	Row2 uint8 = 0x14
	Row3 uint8 = 0x54
)

// RowAddress returns the display RAM address of column x on row y.
// Rows beyond 3 use the row 3 base.
func RowAddress(x, y uint8) uint8 {
	switch y {
	case 0:
		return Row0 + x
	case 1:
		return Row1 + x
	case 2:
		return Row2 + x
	default:
		return Row3 + x
	}
}
