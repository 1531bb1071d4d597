// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/flint/internal"
	"github.com/ezrec/flint/io"
	"github.com/ezrec/flint/vm"
)

const (
	TEMP_CAPACITY = 4096    // Values kept by the Temporary channel.
	MEMORY_LIMIT  = 1 << 20 // Default memory slots of the machine.
)

var _emulator_defines = map[string]string{
	"TEMP_CAPACITY": fmt.Sprintf("%v", TEMP_CAPACITY),
}

// Emulator state. VM + program listing + PRINT channels.
type Emulator struct {
	Verbose  bool        // If set, enables verbose logging.
	*vm.Vm               // Reference to the machine.
	Program  *vm.Program // Reference to the currently running program listing.
	MaxSteps int         // If non-zero, Tick fails after this many instructions.

	Tape      io.Tape      // Tape PRINT channel.
	Temporary io.Temporary // Temporary PRINT channel.
	Output    io.Channel   // Active PRINT channel, Tape by default.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Vm:      vm.NewVm(nil),
		Program: &vm.Program{},
	}

	emu.Temporary.Capacity = TEMP_CAPACITY
	emu.Vm.Memory.Limit = MEMORY_LIMIT
	emu.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Vm.Defines(),
	)
}

// Reset loads the program into a fresh machine, keeping the limits of the
// previous one.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		err = ErrNoProgram
		return
	}

	machine, err := emu.Program.NewVm()
	if err != nil {
		return
	}

	if emu.Vm != nil {
		machine.Stack.Limit = emu.Vm.Stack.Limit
		machine.Memory.Limit = emu.Vm.Memory.Limit
		machine.Logger = emu.Vm.Logger
	}

	machine.Printer = emu.Output
	emu.Vm = machine

	emu.Tape.Rewind()
	emu.Temporary.Rewind()

	return
}

// Steps returns the instructions executed since a reset.
func (emu *Emulator) Steps() int {
	return emu.Vm.Steps
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() uint32 {
	return emu.Vm.Ip
}

// Line returns the source line of the executing instruction.
func (emu *Emulator) Line() (line vm.LineInfo, ok bool) {
	return emu.Program.Debug(emu.Vm.Ip)
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	line, _ := emu.Line()
	return line.LineNo
}

// Tick executes a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set VM verbosity
	emu.Vm.Verbose = emu.Verbose

	ip := emu.Vm.Ip
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Ip: ip, Err: err}
		}
	}()

	if !emu.Vm.Running() {
		done = true
		return
	}

	if emu.MaxSteps > 0 && emu.Vm.Steps >= emu.MaxSteps {
		err = ErrStepLimit
		return
	}

	err = emu.Vm.Step()
	if err != nil {
		return
	}

	done = !emu.Vm.Running()

	return
}

// Run ticks the emulator until the machine stops.
func (emu *Emulator) Run() (result vm.Result, err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	result = emu.Vm.Result()

	return
}
