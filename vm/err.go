package vm

import (
	"errors"

	"github.com/ezrec/flint/translate"
)

var f = translate.From

var (
	// Runtime faults
	ErrStackUnderflow   = errors.New(f("stack underflow"))
	ErrStackOverflow    = errors.New(f("stack overflow"))
	ErrOpcodeUnknown    = errors.New(f("unknown opcode"))
	ErrDivideByZero     = errors.New(f("division by zero"))
	ErrTypeMismatch     = errors.New(f("type mismatch"))
	ErrOperandTruncated = errors.New(f("operand truncated"))
	ErrMemoryLimit      = errors.New(f("memory limit"))
	ErrPrint            = errors.New(f("print"))
	ErrHalted           = errors.New(f("halted"))

	// Soft-stop condition
	ErrMemoryBounds = errors.New(f("memory out of bounds"))

	// Opcode table errors
	ErrTableName      = errors.New(f("opcode name empty"))
	ErrTableSize      = errors.New(f("opcode size invalid"))
	ErrTableDuplicate = errors.New(f("opcode duplicated"))

	// Image errors
	ErrHeaderShort = errors.New(f("header truncated"))
	ErrHeaderMagic = errors.New(f("header magic invalid"))
	ErrHeaderRange = errors.New(f("header offsets invalid"))
	ErrSymbols     = errors.New(f("symbols invalid"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelSyntax     = errors.New(f("label syntax"))
	ErrMacroSyntax     = errors.New(f(".macro syntax"))
	ErrMacroNesting    = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate  = errors.New(f(".macro duplicated"))
	ErrMacroLonely     = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm = errors.New(f(".endm without .macro"))
	ErrMacroRecursion  = errors.New(f(".macro recursion too deep"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrOperandExtra    = errors.New(f("excessive operands"))
	ErrOperandRange    = errors.New(f("operand out of range"))
)

// ErrOpcode identifies the instruction that faulted.
type ErrOpcode struct {
	Ip uint32
	Op Opcode
}

func (eo ErrOpcode) Error() string {
	return f("0x%04x: %v", eo.Ip, eo.Op.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("unknown mnemonic '%v'", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
