// Package vm implements the flint stack machine, its assembler and its
// disassembler.
//
// The machine consists of an instruction pointer (IP) into a byte-coded
// instruction stream, a growable operand stack of tagged numeric values, and a
// flat, growable memory array addressed by 32-bit unsigned integers. Every
// instruction is one opcode byte followed by 0, 1, 4 or 8 big-endian operand
// bytes.
//
// The assembler translates a line oriented mnemonic syntax into the binary
// instruction stream in two passes, supporting labels, equates, macros, and
// compile-time expression evaluation.
package vm
