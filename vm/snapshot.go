package vm

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"go.creack.net/smol/op"
)

// Snapshot is the serialized state of a machine.
type Snapshot struct {
	Registers Registers `cbor:"regs"`
	Memory    []byte    `cbor:"mem"`
	Code      []byte    `cbor:"code"`
	Steps     uint64    `cbor:"steps"`
}

// Canonical encoding so identical states give identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot serializes the machine state.
func (m *Machine) Snapshot() ([]byte, error) {
	return cborEncMode.Marshal(Snapshot{
		Registers: m.Regs,
		Memory:    m.Mem.Bytes(),
		Code:      m.Code,
		Steps:     m.Steps,
	})
}

// DecodeSnapshot deserializes a snapshot without building a machine.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	if len(s.Memory) != op.MemSize {
		return nil, fmt.Errorf("vm: snapshot memory is %d bytes, expected %d", len(s.Memory), op.MemSize)
	}
	return &s, nil
}

// Restore rebuilds a machine from a snapshot.
func Restore(data []byte, bridge Bridge) (*Machine, error) {
	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	m := New(bridge)
	copy(m.Mem.Bytes(), s.Memory)
	m.Regs = s.Registers
	m.Code = bytes.Clone(s.Code)
	m.Steps = s.Steps
	return m, nil
}
