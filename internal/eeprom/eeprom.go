// Package eeprom is the non-volatile storage boundary: a small
// byte-addressed cell array that reads 0xFF where it was never written.
//
// Update only writes cells whose value differs, like the AVR
// eeprom_update_* routines, which keeps rewrites off worn cells. Words
// are little-endian.
package eeprom

import "errors"

// Size is the number of cells.
const Size = 64

// Erased is the value of a never-written byte; a never-written word reads
// as ErasedWord.
const (
	Erased     uint8  = 0xff
	ErasedWord uint16 = 0xffff
)

// Persisted layout.
const (
	// AddrAlarmThreshold holds the alarm threshold, 16-bit fixed point.
	AddrAlarmThreshold = 0x00
	// AddrAlarmOff holds the alarm-disabled flag, nonzero = disabled.
	AddrAlarmOff = 0x02
)

// ErrOutOfRange is returned for an address outside the cell array.
var ErrOutOfRange = errors.New("eeprom: address out of range")

// Storage reads and updates cells. Reads of an out-of-range address return
// the erased value.
type Storage interface {
	ReadWord(addr int) uint16
	ReadByte(addr int) uint8
	UpdateWord(addr int, v uint16) error
	UpdateByte(addr int, v uint8) error
}

// image is the cell array shared by the file and memory stores.
type image [Size]byte

func erasedImage() image {
	var im image
	for i := range im {
		im[i] = Erased
	}
	return im
}

func (im *image) readByte(addr int) uint8 {
	if addr < 0 || addr >= Size {
		return Erased
	}
	return im[addr]
}

func (im *image) readWord(addr int) uint16 {
	if addr < 0 || addr+1 >= Size {
		return ErasedWord
	}
	return uint16(im[addr]) | uint16(im[addr+1])<<8
}

func checkRange(addr, n int) error {
	if addr < 0 || addr+n > Size {
		return ErrOutOfRange
	}
	return nil
}
