package vm

import (
	"slices"
)

// Builder assembles an instruction stream programmatically.
//
//	code := new(Builder).U8(OP_BIPUSH, 10).U8(OP_BIPUSH, 20).Op(OP_ADD).Op(OP_HALT).Bytes()
type Builder struct {
	code []byte
}

// Op appends an instruction without an operand.
func (b *Builder) Op(op Opcode) *Builder {
	b.code = append(b.code, byte(op))
	return b
}

// U8 appends an instruction with an 8-bit operand.
func (b *Builder) U8(op Opcode, value uint8) *Builder {
	b.code = AppendUint8(append(b.code, byte(op)), value)
	return b
}

// I32 appends an instruction with a signed 32-bit operand.
func (b *Builder) I32(op Opcode, value int32) *Builder {
	b.code = AppendInt32(append(b.code, byte(op)), value)
	return b
}

// U32 appends an instruction with an address operand.
func (b *Builder) U32(op Opcode, value uint32) *Builder {
	b.code = AppendUint32(append(b.code, byte(op)), value)
	return b
}

// F64 appends an instruction with a float operand.
func (b *Builder) F64(op Opcode, value float64) *Builder {
	b.code = AppendFloat64(append(b.code, byte(op)), value)
	return b
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(data ...byte) *Builder {
	b.code = append(b.code, data...)
	return b
}

// Len returns the address of the next instruction.
func (b *Builder) Len() uint32 {
	return uint32(len(b.code))
}

// Bytes returns a copy of the stream built so far.
func (b *Builder) Bytes() []byte {
	return slices.Clone(b.code)
}
