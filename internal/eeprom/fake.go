package eeprom

// Memory is an in-memory EEPROM for tests. It records every Update call and
// counts the cell writes that actually happened.
type Memory struct {
	im image

	// Updates logs every Update call in order, changed or not.
	Updates []Update
	// Writes counts updates that changed at least one cell.
	Writes int

	// UpdateError, if set, is returned by every Update.
	UpdateError error
}

// Update is one recorded Update call.
type Update struct {
	Addr  int
	Value uint16
	Word  bool
}

// NewMemory returns an erased store.
func NewMemory() *Memory {
	return &Memory{im: erasedImage()}
}

// ReadByte returns the cell at addr.
func (m *Memory) ReadByte(addr int) uint8 { return m.im.readByte(addr) }

// ReadWord returns the word at addr.
func (m *Memory) ReadWord(addr int) uint16 { return m.im.readWord(addr) }

// UpdateByte stores v at addr.
func (m *Memory) UpdateByte(addr int, v uint8) error {
	m.Updates = append(m.Updates, Update{Addr: addr, Value: uint16(v)})
	return m.store(addr, []byte{v})
}

// UpdateWord stores v at addr.
func (m *Memory) UpdateWord(addr int, v uint16) error {
	m.Updates = append(m.Updates, Update{Addr: addr, Value: v, Word: true})
	return m.store(addr, []byte{byte(v), byte(v >> 8)})
}

func (m *Memory) store(addr int, b []byte) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if err := checkRange(addr, len(b)); err != nil {
		return err
	}
	changed := false
	for i, c := range b {
		if m.im[addr+i] != c {
			m.im[addr+i] = c
			changed = true
		}
	}
	if changed {
		m.Writes++
	}
	return nil
}

// Reset clears the call log but keeps the stored cells.
func (m *Memory) Reset() {
	m.Updates = nil
	m.Writes = 0
	m.UpdateError = nil
}
