package vm

import (
	"fmt"
	"strings"
)

// Opcode is the one byte instruction identifier.
type Opcode byte

const (
	OP_NOP    = Opcode(0x00) // NOP
	OP_HALT   = Opcode(0x01) // HALT
	OP_IPUSH  = Opcode(0x02) // IPUSH
	OP_BIPUSH = Opcode(0x03) // BIPUSH
	OP_FPUSH  = Opcode(0x04) // FPUSH
	OP_POP    = Opcode(0x05) // POP
	OP_SWP    = Opcode(0x06) // SWP
	OP_DUP    = Opcode(0x07) // DUP
	OP_STORE  = Opcode(0x08) // STORE
	OP_LOAD   = Opcode(0x09) // LOAD
	OP_NEG    = Opcode(0x0a) // NEG
	OP_ADD    = Opcode(0x0b) // ADD
	OP_SUB    = Opcode(0x0c) // SUB
	OP_MUL    = Opcode(0x0d) // MUL
	OP_DIV    = Opcode(0x0e) // DIV
	OP_MOD    = Opcode(0x0f) // MOD
	OP_CMP    = Opcode(0x10) // CMP
	OP_JL     = Opcode(0x11) // JL
	OP_JLE    = Opcode(0x12) // JLE
	OP_JG     = Opcode(0x13) // JG
	OP_JGE    = Opcode(0x14) // JGE
	OP_JE     = Opcode(0x15) // JE
	OP_JNE    = Opcode(0x16) // JNE
	OP_JMP    = Opcode(0x17) // JMP
	OP_PRINT  = Opcode(0x18) // PRINT
)

// OperandKind is the encoding of the operand following an opcode byte.
type OperandKind int

const (
	OPERAND_NONE = OperandKind(0) // no operand
	OPERAND_U8   = OperandKind(1) // 8-bit unsigned
	OPERAND_I32  = OperandKind(2) // 32-bit signed, big-endian
	OPERAND_U32  = OperandKind(3) // 32-bit unsigned address, big-endian
	OPERAND_F64  = OperandKind(4) // 64-bit float, big-endian
)

// Size returns the number of operand bytes for the operand kind.
func (kind OperandKind) Size() int {
	switch kind {
	case OPERAND_U8:
		return 1
	case OPERAND_I32, OPERAND_U32:
		return 4
	case OPERAND_F64:
		return 8
	}

	return 0
}

// Info describes the encoding of an opcode.
type Info struct {
	Code    Opcode      // Numeric opcode.
	Name    string      // Upper case mnemonic.
	Size    int         // Total encoded size, opcode byte included.
	Operand OperandKind // Operand encoding.
}

// opcodeTable is the authoritative instruction set.
var opcodeTable = []Info{
	{OP_NOP, "NOP", 1, OPERAND_NONE},
	{OP_HALT, "HALT", 1, OPERAND_NONE},
	{OP_IPUSH, "IPUSH", 5, OPERAND_I32},
	{OP_BIPUSH, "BIPUSH", 2, OPERAND_U8},
	{OP_FPUSH, "FPUSH", 9, OPERAND_F64},
	{OP_POP, "POP", 1, OPERAND_NONE},
	{OP_SWP, "SWP", 1, OPERAND_NONE},
	{OP_DUP, "DUP", 1, OPERAND_NONE},
	{OP_STORE, "STORE", 5, OPERAND_U32},
	{OP_LOAD, "LOAD", 5, OPERAND_U32},
	{OP_NEG, "NEG", 1, OPERAND_NONE},
	{OP_ADD, "ADD", 1, OPERAND_NONE},
	{OP_SUB, "SUB", 1, OPERAND_NONE},
	{OP_MUL, "MUL", 1, OPERAND_NONE},
	{OP_DIV, "DIV", 1, OPERAND_NONE},
	{OP_MOD, "MOD", 1, OPERAND_NONE},
	{OP_CMP, "CMP", 1, OPERAND_NONE},
	{OP_JL, "JL", 5, OPERAND_U32},
	{OP_JLE, "JLE", 5, OPERAND_U32},
	{OP_JG, "JG", 5, OPERAND_U32},
	{OP_JGE, "JGE", 5, OPERAND_U32},
	{OP_JE, "JE", 5, OPERAND_U32},
	{OP_JNE, "JNE", 5, OPERAND_U32},
	{OP_JMP, "JMP", 5, OPERAND_U32},
	{OP_PRINT, "PRINT", 1, OPERAND_NONE},
}

// opcodeSet is the decode and encode view of an opcode table.
type opcodeSet struct {
	byCode [256]*Info
	byName map[string]Opcode
}

// newOpcodeSet indexes a table, rejecting duplicated codes, duplicated
// mnemonics, and sizes that disagree with the operand kind.
func newOpcodeSet(table []Info) (set *opcodeSet, err error) {
	set = &opcodeSet{
		byName: make(map[string]Opcode, len(table)),
	}

	for n := range table {
		info := &table[n]
		name := strings.ToUpper(info.Name)
		switch {
		case len(name) == 0:
			err = ErrTableName
		case info.Size != 1+info.Operand.Size():
			err = ErrTableSize
		case set.byCode[info.Code] != nil:
			err = ErrTableDuplicate
		default:
			_, dup := set.byName[name]
			if dup {
				err = ErrTableDuplicate
			}
		}
		if err != nil {
			err = fmt.Errorf("%w: %v (0x%02x)", err, info.Name, byte(info.Code))
			set = nil
			return
		}
		set.byCode[info.Code] = info
		set.byName[name] = info.Code
	}

	return
}

var opcodes *opcodeSet

func init() {
	var err error
	opcodes, err = newOpcodeSet(opcodeTable)
	if err != nil {
		panic(err)
	}
}

// Lookup returns the encoding of an opcode byte.
func Lookup(op Opcode) (info Info, ok bool) {
	entry := opcodes.byCode[op]
	if entry == nil {
		return
	}

	return *entry, true
}

// LookupName returns the opcode of a case-insensitive mnemonic.
func LookupName(name string) (op Opcode, ok bool) {
	op, ok = opcodes.byName[strings.ToUpper(name)]
	return
}

// Opcodes returns a copy of the instruction set, in opcode order.
func Opcodes() (infos []Info) {
	for _, entry := range opcodes.byCode {
		if entry != nil {
			infos = append(infos, *entry)
		}
	}

	return
}

// Size returns the total encoded size of the instruction, or 0 if unknown.
func (op Opcode) Size() int {
	info, ok := Lookup(op)
	if !ok {
		return 0
	}

	return info.Size
}

// IsJump returns true for the conditional and unconditional jumps.
func (op Opcode) IsJump() bool {
	return op >= OP_JL && op <= OP_JMP
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	info, ok := Lookup(op)
	if !ok {
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
	}

	return info.Name
}
