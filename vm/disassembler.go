package vm

import (
	"fmt"
	"iter"
	"strings"
)

// Line is one entry of a disassembly listing.
type Line struct {
	Offset    uint32 // Address of the opcode byte.
	Op        Opcode // Opcode byte.
	Size      int    // Bytes consumed by the entry.
	Known     bool   // False for UNKNOWN entries.
	Truncated bool   // The operand ran past the end of the stream.
	Operand   string // Formatted operand, if any.
}

// String formats the entry as OOOO: CC NAME operand.
func (line Line) String() string {
	prefix := fmt.Sprintf("%04X: %02X", line.Offset, byte(line.Op))

	switch {
	case line.Truncated:
		return fmt.Sprintf("%s UNKNOWN (truncated %v)", prefix, line.Op)
	case !line.Known:
		return prefix + " UNKNOWN"
	case len(line.Operand) == 0:
		return fmt.Sprintf("%s %v", prefix, line.Op)
	}

	return fmt.Sprintf("%s %-10v %s", prefix, line.Op, line.Operand)
}

// formatOperand renders the operand at offset of a known opcode.
func formatOperand(code []byte, offset int, info Info) (text string) {
	switch info.Operand {
	case OPERAND_U8:
		value, _ := DecodeUint8(code, offset)
		text = fmt.Sprintf("%d", int8(value))
	case OPERAND_I32:
		value, _ := DecodeInt32(code, offset)
		text = fmt.Sprintf("%d", value)
	case OPERAND_U32:
		value, _ := DecodeUint32(code, offset)
		text = fmt.Sprintf("%-8d (0x%02X)", value, value)
	case OPERAND_F64:
		value, _ := DecodeFloat64(code, offset)
		text = fmt.Sprintf("%.4f", value)
	}

	return
}

// Decode walks an instruction stream whose first byte is at address origin.
// Unknown opcodes and truncated trailing instructions yield an UNKNOWN entry
// one byte long; decoding resumes at the next byte.
func Decode(code []byte, origin uint32) iter.Seq[Line] {
	return func(yield func(line Line) bool) {
		for n := 0; n < len(code); {
			line := Line{
				Offset: origin + uint32(n),
				Op:     Opcode(code[n]),
				Size:   1,
			}

			info, ok := Lookup(line.Op)
			switch {
			case !ok:
				// UNKNOWN
			case n+info.Size > len(code):
				line.Truncated = true
			default:
				line.Known = true
				line.Size = info.Size
				line.Operand = formatOperand(code, n+1, info)
			}

			if !yield(line) {
				return
			}

			n += line.Size
		}
	}
}

// Listing returns the decoded entries of an instruction stream.
func Listing(code []byte, origin uint32) (lines []Line) {
	for line := range Decode(code, origin) {
		lines = append(lines, line)
	}

	return
}

// Disassemble renders a raw instruction stream, one line per instruction.
func Disassemble(code []byte) string {
	var b strings.Builder

	for line := range Decode(code, 0) {
		b.WriteString(line.String())
		b.WriteString("\n")
	}

	return b.String()
}

// DisassembleImage renders an image. With a valid FLNT header only the code
// section is listed, at its absolute offsets; anything else is listed raw.
func DisassembleImage(image []byte) string {
	header, err := ParseHeader(image)
	if err != nil {
		return Disassemble(image)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "; %s v%d code 0x%04X..0x%04X\n",
		string(header.Magic[:]), header.Version, header.CodeStart, header.DataStart)
	for line := range Decode(image[header.CodeStart:header.DataStart], header.CodeStart) {
		b.WriteString(line.String())
		b.WriteString("\n")
	}

	return b.String()
}
