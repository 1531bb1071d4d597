package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		value Value
		text  string
		typed string
	}{
		{MakeInt(30), "30", "Int(30)"},
		{MakeInt(-7), "-7", "Int(-7)"},
		{MakeFloat(2.5), "2.5", "Float(2.5)"},
		{MakeFloat(3), "3", "Float(3)"},
		{MakeFloat(math.Inf(1)), "+Inf", "Float(+Inf)"},
		{MakeByte('A'), "A", "Byte('A')"},
		{Value{}, "0", "Int(0)"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.value.String())
		assert.Equal(entry.typed, entry.value.Typed())
	}

	assert.True(MakeInt(1).Numeric())
	assert.True(MakeFloat(1).Numeric())
	assert.False(MakeByte(1).Numeric())
	assert.Equal(4.0, MakeInt(4).AsFloat())
	assert.Equal("Float", KIND_FLOAT.String())
	assert.Equal("Kind(9)", Kind(9).String())
}

func TestStopString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("running", STOP_NONE.String())
	assert.Equal("halt", STOP_HALT.String())
	assert.Equal("end", STOP_END.String())
	assert.Equal("bounds", STOP_BOUNDS.String())
	assert.Equal("fault", STOP_FAULT.String())
	assert.Equal("Stop(7)", Stop(7).String())
}

func TestStack(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{Limit: 2}
	assert.True(s.Empty())

	_, ok := s.Pop()
	assert.False(ok)
	assert.False(s.Swap())

	assert.True(s.Push(MakeInt(1)))
	assert.True(s.Push(MakeInt(2)))
	assert.True(s.Full())
	assert.False(s.Push(MakeInt(3)))
	assert.Equal(2, s.Depth())

	assert.True(s.Swap())
	value, ok := s.Peek()
	assert.True(ok)
	assert.Equal(MakeInt(1), value)

	value, ok = s.Pop()
	assert.True(ok)
	assert.Equal(MakeInt(1), value)

	s.Reset()
	assert.True(s.Empty())

	unbounded := &Stack{}
	for n := range 1000 {
		assert.True(unbounded.Push(MakeInt(int32(n))))
	}
	assert.False(unbounded.Full())
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	m := &Memory{}
	_, ok := m.Load(0)
	assert.False(ok)

	assert.True(m.Store(3, MakeFloat(1.5)))
	assert.Equal(4, m.Len())

	value, ok := m.Load(1)
	assert.True(ok)
	assert.Equal(MakeInt(0), value)

	value, ok = m.Load(3)
	assert.True(ok)
	assert.Equal(MakeFloat(1.5), value)

	_, ok = m.Load(4)
	assert.False(ok)
	_, ok = m.Load(math.MaxUint32)
	assert.False(ok)

	limited := &Memory{Limit: 4}
	assert.True(limited.Store(3, MakeInt(1)))
	assert.False(limited.Store(4, MakeInt(1)))

	m.Reset()
	assert.Equal(0, m.Len())
}
