package vm

import (
	"fmt"
	"strconv"
)

// Kind is the tag of a Value.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_INT   = Kind(0) // Int
	KIND_FLOAT = Kind(1) // Float
	KIND_BYTE  = Kind(2) // Byte
)

// Value is a tagged stack or memory entry.
//
// Byte values are only ever created by the host, for character output; no
// instruction produces one.
type Value struct {
	Kind  Kind
	Int   int32   // Payload of KIND_INT and KIND_BYTE.
	Float float64 // Payload of KIND_FLOAT.
}

// MakeInt makes an integer value.
func MakeInt(value int32) Value {
	return Value{Kind: KIND_INT, Int: value}
}

// MakeFloat makes a floating point value.
func MakeFloat(value float64) Value {
	return Value{Kind: KIND_FLOAT, Float: value}
}

// MakeByte makes a character value.
func MakeByte(value byte) Value {
	return Value{Kind: KIND_BYTE, Int: int32(value)}
}

// Numeric returns true for values usable by arithmetic.
func (v Value) Numeric() bool {
	return v.Kind == KIND_INT || v.Kind == KIND_FLOAT
}

// AsFloat returns the value promoted to a float.
func (v Value) AsFloat() float64 {
	if v.Kind == KIND_FLOAT {
		return v.Float
	}

	return float64(v.Int)
}

// String formats the value the way PRINT emits it.
func (v Value) String() string {
	switch v.Kind {
	case KIND_INT:
		return strconv.FormatInt(int64(v.Int), 10)
	case KIND_FLOAT:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KIND_BYTE:
		return string(rune(byte(v.Int)))
	}

	return "?"
}

// Typed formats the value with its kind, as in Int(30) or Float(1.5).
func (v Value) Typed() string {
	switch v.Kind {
	case KIND_BYTE:
		return fmt.Sprintf("%v(%q)", v.Kind, byte(v.Int))
	}

	return fmt.Sprintf("%v(%v)", v.Kind, v.String())
}
