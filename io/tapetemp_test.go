package io

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/flint/vm"
)

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestTape_Print(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tape := &Tape{Output: out}

	assert.NoError(tape.Print(vm.MakeInt(30)))
	assert.NoError(tape.Print(vm.MakeFloat(2.5)))
	assert.NoError(tape.Print(vm.MakeByte('A')))

	assert.Equal("30\n2.5\nA\n", out.String())
	assert.Equal(3, tape.Count())

	tape.Rewind()
	assert.Equal(0, tape.Count())
}

func TestTape_Typed(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tape := &Tape{Output: out, Typed: true}

	assert.NoError(tape.Print(vm.MakeInt(-3)))
	assert.NoError(tape.Print(vm.MakeFloat(1)))

	assert.Equal("Int(-3)\nFloat(1)\n", out.String())
}

func TestTape_Errors(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	assert.ErrorIs(tape.Print(vm.MakeInt(1)), ErrNoOutput)

	tape.Output = failWriter{}
	assert.Error(tape.Print(vm.MakeInt(1)))
	assert.Equal(0, tape.Count())
}

func TestTemporary_Fifo(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 3}

	assert.NoError(temp.Print(vm.MakeInt(1)))
	assert.NoError(temp.Print(vm.MakeInt(2)))
	assert.NoError(temp.Print(vm.MakeInt(3)))
	assert.ErrorIs(temp.Print(vm.MakeInt(4)), ErrChannelFull)

	// Drain one, then wrap around.
	for value := range temp.Receive() {
		assert.Equal(vm.MakeInt(1), value)
		break
	}
	assert.NoError(temp.Print(vm.MakeInt(4)))

	assert.Equal([]vm.Value{vm.MakeInt(2), vm.MakeInt(3), vm.MakeInt(4)}, temp.Values())
	assert.Empty(temp.Values())
}

func TestTemporary_Rewind(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 2}
	assert.NoError(temp.Print(vm.MakeFloat(0.5)))
	temp.Rewind()

	assert.Equal(0, temp.Size)
	assert.Empty(temp.Values())
}

func TestChannel_Vm(t *testing.T) {
	assert := assert.New(t)

	code := new(vm.Builder).
		U8(vm.OP_BIPUSH, 7).Op(vm.OP_PRINT).
		U8(vm.OP_BIPUSH, 8).Op(vm.OP_PRINT).
		Op(vm.OP_HALT).Bytes()

	temp := &Temporary{Capacity: 1}
	machine := vm.NewVm(code)
	machine.Printer = temp

	_, err := machine.Run()
	assert.ErrorIs(err, vm.ErrPrint)
	assert.ErrorIs(err, ErrChannelFull)
	assert.Equal([]vm.Value{vm.MakeInt(7)}, temp.Values())
}
