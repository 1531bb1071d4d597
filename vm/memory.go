package vm

// Memory is the flat, growable value store addressed by STORE and LOAD.
// A zero Limit is unbounded; otherwise Limit is the maximum number of slots.
type Memory struct {
	Data  []Value
	Limit int
}

// Len returns the number of addressable slots.
func (m *Memory) Len() int {
	return len(m.Data)
}

// Load reads a slot. Addresses at or beyond Len() are out of bounds.
func (m *Memory) Load(addr uint32) (value Value, ok bool) {
	if uint64(addr) >= uint64(len(m.Data)) {
		return
	}

	return m.Data[addr], true
}

// Store writes a slot, growing memory as needed. New slots hold Int(0),
// the zero Value.
func (m *Memory) Store(addr uint32, value Value) (ok bool) {
	need := uint64(addr) + 1
	if m.Limit > 0 && need > uint64(m.Limit) {
		return
	}

	if need > uint64(len(m.Data)) {
		m.Data = append(m.Data, make([]Value, need-uint64(len(m.Data)))...)
	}

	m.Data[addr] = value
	return true
}

func (m *Memory) Reset() {
	if len(m.Data) > 0 {
		m.Data = m.Data[:0]
	}
}
