package vm

import (
	"math"
)

// CMP results.
const (
	CMP_LT        = int32(-1) // a < b
	CMP_EQ        = int32(0)  // a == b
	CMP_GT        = int32(1)  // a > b
	CMP_UNORDERED = int32(2)  // a or b is NaN
)

// doArith applies a binary arithmetic opcode to a (pushed first) and b.
// Int with Int stays Int, wrapping on overflow; any Float operand
// promotes both sides to Float.
func doArith(op Opcode, a, b Value) (result Value, err error) {
	if !a.Numeric() || !b.Numeric() {
		err = ErrTypeMismatch
		return
	}

	if a.Kind == KIND_INT && b.Kind == KIND_INT {
		x, y := a.Int, b.Int
		switch op {
		case OP_ADD:
			result = MakeInt(x + y)
		case OP_SUB:
			result = MakeInt(x - y)
		case OP_MUL:
			result = MakeInt(x * y)
		case OP_DIV:
			if y == 0 {
				err = ErrDivideByZero
				return
			}
			result = MakeInt(x / y)
		case OP_MOD:
			if y == 0 {
				err = ErrDivideByZero
				return
			}
			result = MakeInt(x % y)
		default:
			err = ErrOpcodeUnknown
		}
		return
	}

	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case OP_ADD:
		result = MakeFloat(x + y)
	case OP_SUB:
		result = MakeFloat(x - y)
	case OP_MUL:
		result = MakeFloat(x * y)
	case OP_DIV:
		// Also true for -0.0.
		if y == 0 {
			err = ErrDivideByZero
			return
		}
		result = MakeFloat(x / y)
	case OP_MOD:
		if y == 0 {
			err = ErrDivideByZero
			return
		}
		result = MakeFloat(math.Mod(x, y))
	default:
		err = ErrOpcodeUnknown
	}

	return
}

// doNeg negates a numeric value, keeping its kind.
func doNeg(a Value) (result Value, err error) {
	switch a.Kind {
	case KIND_INT:
		result = MakeInt(-a.Int)
	case KIND_FLOAT:
		result = MakeFloat(-a.Float)
	default:
		err = ErrTypeMismatch
	}

	return
}

// doCmp three-way compares a (pushed first) with b.
func doCmp(a, b Value) (result int32, err error) {
	if !a.Numeric() || !b.Numeric() {
		err = ErrTypeMismatch
		return
	}

	if a.Kind == KIND_INT && b.Kind == KIND_INT {
		switch {
		case a.Int < b.Int:
			result = CMP_LT
		case a.Int > b.Int:
			result = CMP_GT
		default:
			result = CMP_EQ
		}
		return
	}

	x, y := a.AsFloat(), b.AsFloat()
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		result = CMP_UNORDERED
	case x < y:
		result = CMP_LT
	case x > y:
		result = CMP_GT
	default:
		result = CMP_EQ
	}

	return
}

// jumpTaken reports whether a conditional jump is taken for a CMP result.
func jumpTaken(op Opcode, cmp int32) bool {
	switch op {
	case OP_JL:
		return cmp == CMP_LT
	case OP_JLE:
		return cmp == CMP_LT || cmp == CMP_EQ
	case OP_JG:
		return cmp == CMP_GT
	case OP_JGE:
		return cmp == CMP_GT || cmp == CMP_EQ
	case OP_JE:
		return cmp == CMP_EQ
	case OP_JNE:
		return cmp != CMP_EQ
	case OP_JMP:
		return true
	}

	return false
}
