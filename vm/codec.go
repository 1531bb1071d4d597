package vm

import (
	"encoding/binary"
	"math"
)

// AppendUint8 appends an 8-bit operand.
func AppendUint8(code []byte, value uint8) []byte {
	return append(code, value)
}

// AppendInt32 appends a big-endian signed 32-bit operand.
func AppendInt32(code []byte, value int32) []byte {
	return binary.BigEndian.AppendUint32(code, uint32(value))
}

// AppendUint32 appends a big-endian unsigned 32-bit operand.
func AppendUint32(code []byte, value uint32) []byte {
	return binary.BigEndian.AppendUint32(code, value)
}

// AppendFloat64 appends a big-endian IEEE-754 operand, bit pattern preserved.
func AppendFloat64(code []byte, value float64) []byte {
	return binary.BigEndian.AppendUint64(code, math.Float64bits(value))
}

// DecodeUint8 decodes the 8-bit operand at offset.
func DecodeUint8(code []byte, offset int) (value uint8, ok bool) {
	if offset < 0 || offset >= len(code) {
		return
	}

	return code[offset], true
}

// DecodeInt32 decodes the big-endian signed 32-bit operand at offset.
func DecodeInt32(code []byte, offset int) (value int32, ok bool) {
	u, ok := DecodeUint32(code, offset)
	return int32(u), ok
}

// DecodeUint32 decodes the big-endian unsigned 32-bit operand at offset.
func DecodeUint32(code []byte, offset int) (value uint32, ok bool) {
	if offset < 0 || offset+4 > len(code) {
		return
	}

	return binary.BigEndian.Uint32(code[offset:]), true
}

// DecodeFloat64 decodes the big-endian IEEE-754 operand at offset.
func DecodeFloat64(code []byte, offset int) (value float64, ok bool) {
	if offset < 0 || offset+8 > len(code) {
		return
	}

	return math.Float64frombits(binary.BigEndian.Uint64(code[offset:])), true
}
