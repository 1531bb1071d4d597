package vm

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Printer receives the values popped by PRINT.
type Printer interface {
	Print(value Value) error
}

// Stop is the reason a machine is no longer running.
type Stop int

// Stop reasons. STOP_END is reached when the IP runs off the end of the
// instruction stream; STOP_BOUNDS by a LOAD out of bounds.
//
//go:generate go tool stringer -linecomment -type=Stop
const (
	STOP_NONE   = Stop(0) // running
	STOP_HALT   = Stop(1) // halt
	STOP_END    = Stop(2) // end
	STOP_BOUNDS = Stop(3) // bounds
	STOP_FAULT  = Stop(4) // fault
)

// Result is the final state of a run.
type Result struct {
	Stack  []Value // Operand stack, bottom first.
	Memory []Value // Memory slots.
	Stop   Stop    // Why the machine stopped.
	Steps  int     // Instructions executed.
	Fault  error   // The soft-stop condition, if Stop is STOP_BOUNDS.
}

// Vm is a single machine instance. Instances share nothing.
type Vm struct {
	Verbose bool        // Set to trace every instruction.
	Logger  *zap.Logger // Trace and soft-stop reports.
	Printer Printer     // Destination of PRINT, discarded if nil.

	Code   []byte // Instruction stream.
	Start  uint32 // Initial IP.
	End    uint32 // IP at which execution ends.
	Ip     uint32 // Current instruction pointer.
	Stack  Stack  // Operand stack.
	Memory Memory // Flat memory.
	Steps  int    // Instructions executed since Reset.
	Fault  error  // Soft-stop condition.

	stop    Stop
	running bool
}

// NewVm creates a machine for a raw instruction stream, starting at offset 0.
func NewVm(code []byte) (vm *Vm) {
	vm = &Vm{
		Logger: Logger(),
		Code:   code,
		End:    uint32(len(code)),
	}

	vm.Reset()

	return
}

// NewVmImage creates a machine for an FLNT image. Execution starts at the
// header's code start and ends at its data start.
func NewVmImage(image []byte) (vm *Vm, err error) {
	header, err := ParseHeader(image)
	if err != nil {
		return
	}

	vm = NewVm(image)
	vm.Start = header.CodeStart
	vm.End = header.DataStart
	vm.Reset()

	return
}

// Reset clears the stack and memory and rewinds to the start.
func (vm *Vm) Reset() {
	vm.Ip = vm.Start
	vm.Stack.Reset()
	vm.Memory.Reset()
	vm.Steps = 0
	vm.Fault = nil
	vm.stop = STOP_NONE
	vm.running = true
}

// Running returns false once the machine has stopped.
func (vm *Vm) Running() bool {
	return vm.running
}

// Stop returns why the machine stopped.
func (vm *Vm) Stop() Stop {
	return vm.stop
}

// Defines returns assembler equates describing this machine.
func (vm *Vm) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"STACK_LIMIT":  fmt.Sprintf("%d", vm.Stack.Limit),
		"MEMORY_LIMIT": fmt.Sprintf("%d", vm.Memory.Limit),
		"CODE_START":   fmt.Sprintf("%d", vm.Start),
	})
}

// Push seeds the operand stack.
func (vm *Vm) Push(value Value) (err error) {
	if !vm.Stack.Push(value) {
		err = ErrStackOverflow
	}
	return
}

// Store seeds memory.
func (vm *Vm) Store(addr uint32, value Value) (err error) {
	if !vm.Memory.Store(addr, value) {
		err = ErrMemoryLimit
	}
	return
}

// Result snapshots the machine state.
func (vm *Vm) Result() Result {
	return Result{
		Stack:  slices.Clone(vm.Stack.Data),
		Memory: slices.Clone(vm.Memory.Data),
		Stop:   vm.stop,
		Steps:  vm.Steps,
		Fault:  vm.Fault,
	}
}

// Run executes until HALT, the end of the stream, an out of bounds LOAD, or
// a fatal fault. A fault is returned as the error; the result is returned in
// all cases.
func (vm *Vm) Run() (result Result, err error) {
	for vm.running {
		err = vm.Step()
		if err != nil {
			break
		}
	}

	result = vm.Result()

	return
}

// halt stops the machine.
func (vm *Vm) halt(stop Stop) {
	vm.running = false
	vm.stop = stop
}

// pop pops one value, or reports underflow.
func (vm *Vm) pop() (value Value, err error) {
	value, ok := vm.Stack.Pop()
	if !ok {
		err = ErrStackUnderflow
	}
	return
}

// pop2 pops b then a, leaving the stack untouched on underflow.
func (vm *Vm) pop2() (a, b Value, err error) {
	if vm.Stack.Depth() < 2 {
		err = ErrStackUnderflow
		return
	}

	b, _ = vm.Stack.Pop()
	a, _ = vm.Stack.Pop()
	return
}

// Step executes a single instruction. A faulting instruction, or an out of
// bounds LOAD, leaves the IP at its own address.
func (vm *Vm) Step() (err error) {
	if !vm.running {
		return ErrHalted
	}

	if vm.Ip >= vm.End || uint64(vm.Ip) >= uint64(len(vm.Code)) {
		vm.halt(STOP_END)
		return
	}

	ip := vm.Ip
	op := Opcode(vm.Code[ip])

	defer func() {
		if err != nil {
			vm.Ip = ip
			vm.halt(STOP_FAULT)
			err = errors.Join(ErrOpcode{Ip: ip, Op: op}, err)
			return
		}
		vm.Steps++
		if vm.running && vm.Ip >= vm.End {
			vm.halt(STOP_END)
		}
	}()

	info, ok := Lookup(op)
	if !ok {
		return ErrOpcodeUnknown
	}

	if uint64(ip)+uint64(info.Size) > uint64(vm.End) {
		return ErrOperandTruncated
	}

	if vm.Verbose {
		vm.Logger.Debug("step",
			zap.Uint32("ip", ip),
			zap.Stringer("op", op),
			zap.Int("depth", vm.Stack.Depth()))
	}

	operand := int(ip) + 1
	vm.Ip = ip + uint32(info.Size)

	switch op {
	case OP_NOP:
		// pass
	case OP_HALT:
		vm.halt(STOP_HALT)
	case OP_IPUSH:
		value, _ := DecodeInt32(vm.Code, operand)
		err = vm.Push(MakeInt(value))
	case OP_BIPUSH:
		value, _ := DecodeUint8(vm.Code, operand)
		err = vm.Push(MakeInt(int32(int8(value))))
	case OP_FPUSH:
		value, _ := DecodeFloat64(vm.Code, operand)
		err = vm.Push(MakeFloat(value))
	case OP_POP:
		_, err = vm.pop()
	case OP_SWP:
		if !vm.Stack.Swap() {
			err = ErrStackUnderflow
		}
	case OP_DUP:
		value, ok := vm.Stack.Peek()
		if !ok {
			err = ErrStackUnderflow
			break
		}
		err = vm.Push(value)
	case OP_STORE:
		addr, _ := DecodeUint32(vm.Code, operand)
		var value Value
		value, err = vm.pop()
		if err != nil {
			break
		}
		err = vm.Store(addr, value)
	case OP_LOAD:
		addr, _ := DecodeUint32(vm.Code, operand)
		value, ok := vm.Memory.Load(addr)
		if !ok {
			vm.Fault = errors.Join(ErrOpcode{Ip: ip, Op: op}, fmt.Errorf("%w: 0x%x", ErrMemoryBounds, addr))
			vm.Logger.Warn("load out of bounds",
				zap.Uint32("ip", ip),
				zap.Uint32("addr", addr),
				zap.Int("len", vm.Memory.Len()))
			vm.Ip = ip
			vm.halt(STOP_BOUNDS)
			break
		}
		err = vm.Push(value)
	case OP_NEG:
		var a Value
		a, err = vm.pop()
		if err != nil {
			break
		}
		a, err = doNeg(a)
		if err != nil {
			break
		}
		err = vm.Push(a)
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
		var a, b, result Value
		a, b, err = vm.pop2()
		if err != nil {
			break
		}
		result, err = doArith(op, a, b)
		if err != nil {
			break
		}
		err = vm.Push(result)
	case OP_CMP:
		var a, b Value
		a, b, err = vm.pop2()
		if err != nil {
			break
		}
		var cmp int32
		cmp, err = doCmp(a, b)
		if err != nil {
			break
		}
		err = vm.Push(MakeInt(cmp))
	case OP_JL, OP_JLE, OP_JG, OP_JGE, OP_JE, OP_JNE:
		addr, _ := DecodeUint32(vm.Code, operand)
		var cmp Value
		cmp, err = vm.pop()
		if err != nil {
			break
		}
		if cmp.Kind != KIND_INT {
			err = ErrTypeMismatch
			break
		}
		if jumpTaken(op, cmp.Int) {
			vm.Ip = addr
		}
	case OP_JMP:
		addr, _ := DecodeUint32(vm.Code, operand)
		vm.Ip = addr
	case OP_PRINT:
		var value Value
		value, err = vm.pop()
		if err != nil || vm.Printer == nil {
			break
		}
		perr := vm.Printer.Print(value)
		if perr != nil {
			err = errors.Join(ErrPrint, perr)
		}
	default:
		err = ErrOpcodeUnknown
	}

	return
}

// String returns the current machine state as a string.
func (vm *Vm) String() (text string) {
	var b strings.Builder

	fmt.Fprintf(&b, "%6s: %04X\n", "ip", vm.Ip)
	fmt.Fprintf(&b, "%6s: %v\n", "state", vm.stop)
	fmt.Fprintf(&b, "%6s: %d\n", "steps", vm.Steps)

	var entries []string
	for _, value := range vm.Stack.Data {
		entries = append(entries, value.Typed())
	}
	fmt.Fprintf(&b, "%6s: [%v]\n", "stack", strings.Join(entries, ", "))
	fmt.Fprintf(&b, "%6s: %d slots\n", "memory", vm.Memory.Len())

	return b.String()
}
