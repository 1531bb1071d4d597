package vm

import (
	"maps"
	"slices"
)

// Program is the output of the assembler.
type Program struct {
	Header bool              // If set, Code follows an FLNT header.
	Entry  uint32            // Initial IP of a header image, if not Origin().
	Code   []byte            // Instruction stream.
	Labels map[string]uint32 // Resolved label addresses.
	Lines  []LineInfo        // Source line of every instruction, in IP order.
}

// Origin returns the address of the first instruction.
func (prog *Program) Origin() uint32 {
	if prog.Header {
		return HEADER_SIZE
	}

	return 0
}

// Binary returns the loadable image.
func (prog *Program) Binary() (bin []byte) {
	if !prog.Header {
		return slices.Clone(prog.Code)
	}

	header := NewHeader(len(prog.Code))
	if prog.Entry > header.CodeStart && prog.Entry <= header.DataStart {
		header.CodeStart = prog.Entry
	}
	bin = header.Bytes()
	bin = append(bin, prog.Code...)
	return
}

// Symbols returns the debug information of the program.
func (prog *Program) Symbols() *Symbols {
	return &Symbols{
		Origin: prog.Origin(),
		Labels: maps.Clone(prog.Labels),
		Lines:  slices.Clone(prog.Lines),
	}
}

// Debug returns the source line of the instruction containing ip.
func (prog *Program) Debug(ip uint32) (line LineInfo, ok bool) {
	syms := Symbols{Lines: prog.Lines}
	return syms.Lookup(ip)
}

// NewVm creates a machine loaded with the program.
func (prog *Program) NewVm() (vm *Vm, err error) {
	if prog.Header {
		return NewVmImage(prog.Binary())
	}

	return NewVm(prog.Binary()), nil
}

// LoadProgram wraps a binary image, with or without a header, as a Program
// with no symbols. Header images keep their layout; the bytes between the
// header and the code start remain part of Code.
func LoadProgram(image []byte) (prog *Program, err error) {
	if !HasHeader(image) {
		prog = &Program{Code: slices.Clone(image)}
		return
	}

	header, err := ParseHeader(image)
	if err != nil {
		return
	}

	prog = &Program{
		Header: true,
		Entry:  header.CodeStart,
		Code:   slices.Clone(image[HEADER_SIZE:header.DataStart]),
	}

	return
}
