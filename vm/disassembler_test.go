package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	code := new(Builder).U8(OP_BIPUSH, 10).Op(OP_HALT).Bytes()
	lines := strings.Split(strings.TrimSuffix(Disassemble(code), "\n"), "\n")

	assert.Equal([]string{
		"0000: 03 BIPUSH     10",
		"0002: 01 HALT",
	}, lines)
}

func TestDisassembleFormats(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		code []byte
		text string
	}{
		{new(Builder).Op(OP_ADD).Bytes(), "0000: 0B ADD\n"},
		{new(Builder).U8(OP_BIPUSH, 0xFE).Bytes(), "0000: 03 BIPUSH     -2\n"},
		{new(Builder).I32(OP_IPUSH, -500).Bytes(), "0000: 02 IPUSH      -500\n"},
		{new(Builder).U32(OP_LOAD, 10).Bytes(), "0000: 09 LOAD       10       (0x0A)\n"},
		{new(Builder).U32(OP_JMP, 1000).Bytes(), "0000: 17 JMP        1000     (0x3E8)\n"},
		{new(Builder).F64(OP_FPUSH, 42.5).Bytes(), "0000: 04 FPUSH      42.5000\n"},
		{[]byte{0xFF}, "0000: FF UNKNOWN\n"},
		{[]byte{byte(OP_IPUSH), 0, 0}, "0000: 02 UNKNOWN (truncated IPUSH)\n0001: 00 NOP\n0002: 00 NOP\n"},
		{nil, ""},
	}

	for _, entry := range table {
		assert.Equal(entry.text, Disassemble(entry.code))
	}
}

func TestDisassembleOffsets(t *testing.T) {
	assert := assert.New(t)

	code := new(Builder).
		U8(OP_BIPUSH, 5).
		Op(OP_ADD).
		U32(OP_STORE, 20).
		Op(OP_HALT).
		Bytes()

	var offsets []uint32
	for _, line := range Listing(code, 0) {
		offsets = append(offsets, line.Offset)
	}
	assert.Equal([]uint32{0, 2, 3, 8}, offsets)

	// Operand columns line up.
	lines := strings.Split(Disassemble(new(Builder).U32(OP_LOAD, 5).U32(OP_STORE, 500).Bytes()), "\n")
	assert.Equal(strings.Index(lines[0], "("), strings.Index(lines[1], "("))

	// Stopping early.
	count := 0
	for range Decode(code, 0) {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestDisassembleImage(t *testing.T) {
	assert := assert.New(t)

	code := new(Builder).U8(OP_BIPUSH, 1).Op(OP_HALT).Bytes()
	image := append(NewHeader(len(code)).Bytes(), code...)

	assert.Equal(
		"; FLNT v0 code 0x000E..0x0011\n"+
			"000E: 03 BIPUSH     1\n"+
			"0010: 01 HALT\n",
		DisassembleImage(image))

	// Without a valid header the bytes are listed raw.
	assert.Equal(Disassemble(code), DisassembleImage(code))
}

func TestDisassembleRoundTrip(t *testing.T) {
	assert := assert.New(t)

	source := strings.Join([]string{
		"IPUSH -7",
		"FPUSH 0.25",
		"ADD",
		"STORE 2",
		"LOAD 2",
		"JNE 0",
	}, "\n")

	code, err := Assemble(source)
	assert.NoError(err)

	var names []string
	for _, line := range Listing(code, 0) {
		assert.True(line.Known)
		names = append(names, line.Op.String())
	}
	assert.Equal([]string{"IPUSH", "FPUSH", "ADD", "STORE", "LOAD", "JNE"}, names)
}

func FuzzDisassemble(f *testing.F) {
	f.Add([]byte{})
	f.Add(new(Builder).U8(OP_BIPUSH, 10).Op(OP_HALT).Bytes())
	f.Add([]byte{byte(OP_FPUSH), 1, 2})
	f.Add([]byte{0xFF, byte(OP_JMP)})

	f.Fuzz(func(t *testing.T, code []byte) {
		assert := assert.New(t)

		total := 0
		for _, line := range Listing(code, 0) {
			assert.Equal(uint32(total), line.Offset)
			assert.Positive(line.Size)
			if !line.Known {
				assert.Equal(1, line.Size)
			}
			total += line.Size
		}
		assert.Equal(len(code), total)
	})
}
