package bridge

import (
	"github.com/tetratelabs/wazero/api"

	wasmbridge "github.com/wippyai/wasm-bridge"
	"github.com/wippyai/wasm-bridge/errors"
)

// Memory wraps native linear memory with bounds-checked access.
type Memory struct {
	mem   api.Memory
	phase errors.Phase
}

func newMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem, phase: errors.PhaseMarshal}
}

func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(m.phase, offset, length)
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(m.phase, offset, uint32(len(data)))
	}
	return nil
}

func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(m.phase, offset, 1)
	}
	return v, nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(m.phase, offset, 4)
	}
	return v, nil
}

func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(m.phase, offset, 1)
	}
	return nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(m.phase, offset, 4)
	}
	return nil
}

func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// CString reads a NUL-terminated string starting at offset. The terminator
// must appear within limit bytes and inside memory.
func (m *Memory) CString(offset, limit uint32) ([]byte, error) {
	size := m.Size()
	if offset >= size {
		return nil, errors.OutOfBounds(m.phase, offset, 0)
	}
	avail := size - offset
	window := avail
	bounded := limit < avail
	if bounded {
		window = limit + 1
	}
	data, err := m.Read(offset, window)
	if err != nil {
		return nil, err
	}
	for i, c := range data {
		if c == 0 {
			return data[:i], nil
		}
	}
	if !bounded {
		return nil, errors.New(m.phase, errors.KindOutOfBounds).
			Value(offset).
			Detail("string at 0x%x runs past end of memory", offset).
			Build()
	}
	return nil, errors.New(m.phase, errors.KindTooLarge).
		Value(offset).
		Detail("string at 0x%x exceeds %d bytes", offset, limit).
		Build()
}

// Compile-time check that Memory implements wasmbridge.Memory and MemorySizer
var _ wasmbridge.Memory = (*Memory)(nil)
var _ wasmbridge.MemorySizer = (*Memory)(nil)
