package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	FUZZ_STEPS  = 256
	FUZZ_MEMORY = 64
	FUZZ_STACK  = 64
)

func FuzzVm(f *testing.F) {
	f.Add(new(Builder).U8(OP_BIPUSH, 10).U8(OP_BIPUSH, 20).Op(OP_ADD).Op(OP_HALT).Bytes())
	f.Add(new(Builder).U8(OP_BIPUSH, 10).U8(OP_BIPUSH, 0).Op(OP_DIV).Bytes())
	f.Add(new(Builder).U32(OP_LOAD, 3).Bytes())
	f.Add(new(Builder).U32(OP_JMP, 0).Bytes())
	f.Add([]byte{byte(OP_FPUSH), 0x7F, 0xF8})

	f.Fuzz(func(t *testing.T, code []byte) {
		assert := assert.New(t)

		machine := NewVm(code)
		machine.Stack.Limit = FUZZ_STACK
		machine.Memory.Limit = FUZZ_MEMORY

		var err error
		for n := 0; n < FUZZ_STEPS && machine.Running(); n++ {
			depth := machine.Stack.Depth()
			err = machine.Step()
			if err != nil {
				assert.False(machine.Running())
				assert.Equal(STOP_FAULT, machine.Stop())
				assert.ErrorIs(err, ErrOpcode{})
				break
			}
			// No instruction moves the stack by more than one entry.
			assert.LessOrEqual(machine.Stack.Depth(), depth+1)
		}

		assert.LessOrEqual(machine.Stack.Depth(), FUZZ_STACK)
		assert.LessOrEqual(machine.Memory.Len(), FUZZ_MEMORY)
		if !machine.Running() && err == nil {
			assert.Contains([]Stop{STOP_HALT, STOP_END, STOP_BOUNDS}, machine.Stop())
		}
	})
}
