package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ezrec/flint/vm"
)

var (
	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	operandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	commentStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#888888"))
)

// listingStyle selects how listing entries are rendered.
type listingStyle int

const (
	plainListing listingStyle = iota
	colorListing
)

// renderLine formats one disassembly entry.
func renderLine(line vm.Line, style listingStyle) string {
	if style == plainListing {
		return line.String()
	}

	prefix := offsetStyle.Render(fmt.Sprintf("%04X: %02X", line.Offset, byte(line.Op)))

	switch {
	case line.Truncated:
		return prefix + " " + unknownStyle.Render(fmt.Sprintf("UNKNOWN (truncated %v)", line.Op))
	case !line.Known:
		return prefix + " " + unknownStyle.Render("UNKNOWN")
	case len(line.Operand) == 0:
		return prefix + " " + nameStyle.Render(line.Op.String())
	}

	operand := operandStyle
	if line.Op.IsJump() {
		operand = labelStyle
	}

	return prefix + " " + nameStyle.Render(fmt.Sprintf("%-10v", line.Op)) + " " + operand.Render(line.Operand)
}

// renderListing disassembles a program, annotated with its symbols if known.
func renderListing(prog *vm.Program, style listingStyle) string {
	var b strings.Builder

	paint := func(s lipgloss.Style, text string) string {
		if style == plainListing {
			return text
		}
		return s.Render(text)
	}

	if prog.Header {
		header, err := vm.ParseHeader(prog.Binary())
		if err == nil {
			b.WriteString(paint(commentStyle, fmt.Sprintf("; %s v%d code 0x%04X..0x%04X",
				string(header.Magic[:]), header.Version, header.CodeStart, header.DataStart)))
			b.WriteString("\n")
		}
	}

	syms := prog.Symbols()
	for line := range vm.Decode(prog.Code, prog.Origin()) {
		for _, label := range syms.LabelsAt(line.Offset) {
			b.WriteString(paint(labelStyle, label+":"))
			b.WriteString("\n")
		}

		b.WriteString(renderLine(line, style))

		src, ok := prog.Debug(line.Offset)
		if ok && src.Ip == line.Offset {
			b.WriteString(paint(commentStyle, fmt.Sprintf("  ; %d: %s", src.LineNo, strings.Join(src.Words, " "))))
		}
		b.WriteString("\n")
	}

	return b.String()
}
