package eeprom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// File is an EEPROM image kept in a regular file. A missing file is created
// erased. Every changed cell is written and synced before Update returns.
type File struct {
	mu sync.Mutex
	f  *os.File
	im image
}

// OpenFile opens or creates the image at path.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open eeprom image: %w", err)
	}

	im := erasedImage()
	n, err := f.ReadAt(im[:], 0)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("read eeprom image: %w", err)
	}
	if n < Size {
		// short or new file: pad with erased cells
		if _, err := f.WriteAt(im[n:], int64(n)); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend eeprom image: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync eeprom image: %w", err)
		}
	}
	return &File{f: f, im: im}, nil
}

// ReadByte returns the cell at addr.
func (e *File) ReadByte(addr int) uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.im.readByte(addr)
}

// ReadWord returns the word at addr.
func (e *File) ReadWord(addr int) uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.im.readWord(addr)
}

// UpdateByte writes v at addr if it differs from the stored value.
func (e *File) UpdateByte(addr int, v uint8) error {
	return e.update(addr, []byte{v})
}

// UpdateWord writes v at addr if it differs from the stored value.
func (e *File) UpdateWord(addr int, v uint16) error {
	return e.update(addr, []byte{byte(v), byte(v >> 8)})
}

func (e *File) update(addr int, b []byte) error {
	if err := checkRange(addr, len(b)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	same := true
	for i, c := range b {
		if e.im[addr+i] != c {
			same = false
		}
	}
	if same {
		return nil
	}
	if _, err := e.f.WriteAt(b, int64(addr)); err != nil {
		return fmt.Errorf("write eeprom image: %w", err)
	}
	if err := e.f.Sync(); err != nil {
		return fmt.Errorf("sync eeprom image: %w", err)
	}
	copy(e.im[addr:], b)
	return nil
}

// Close closes the image file.
func (e *File) Close() error {
	return e.f.Close()
}

