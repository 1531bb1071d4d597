package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ezrec/flint/emulator"
	"github.com/ezrec/flint/vm"
)

const (
	DEBUG_WINDOW   = 16     // Listing lines shown around the IP.
	DEBUG_MEMORY   = 16     // Memory slots shown.
	DEBUG_OUTPUT   = 8      // Output lines shown.
	DEBUG_CONTINUE = 100000 // Steps per continue, when no step limit is set.
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

var errBreakpoint = errors.New("breakpoint must be a label or an address")

type debugState int

const (
	stateStep debugState = iota
	stateBreakpoint
)

type debugModel struct {
	emu      *emulator.Emulator
	filename string
	listing  []vm.Line
	breaks   map[uint32]bool
	output   strings.Builder
	input    textinput.Model
	state    debugState
	err      error
}

func newDebugModel(emu *emulator.Emulator, filename string) *debugModel {
	m := &debugModel{
		emu:      emu,
		filename: filename,
		listing:  vm.Listing(emu.Program.Code, emu.Program.Origin()),
		breaks:   map[uint32]bool{},
		state:    stateStep,
	}

	m.input = textinput.New()
	m.input.Prompt = "break at: "
	m.input.Placeholder = "label or address"
	m.input.Width = 32

	m.restart()

	return m
}

// restart reloads the program and clears the output.
func (m *debugModel) restart() {
	m.output.Reset()
	m.emu.Tape.Output = &m.output
	m.err = m.emu.Reset()
}

// step executes one instruction.
func (m *debugModel) step() (done bool) {
	done, m.err = m.emu.Tick()
	return done || m.err != nil
}

// resume executes until the machine stops or reaches a breakpoint.
func (m *debugModel) resume() {
	budget := DEBUG_CONTINUE
	if m.emu.MaxSteps > 0 {
		budget = m.emu.MaxSteps
	}

	for n := 0; n < budget; n++ {
		if m.step() {
			return
		}
		if m.breaks[m.emu.Ip()] {
			return
		}
	}
}

// toggleBreak sets or clears a breakpoint by label or address.
func (m *debugModel) toggleBreak(where string) {
	where = strings.TrimSpace(where)
	if len(where) == 0 {
		return
	}

	addr, ok := m.emu.Program.Labels[where]
	if !ok {
		value, err := strconv.ParseUint(where, 0, 32)
		if err != nil {
			m.err = fmt.Errorf("%w: %q", errBreakpoint, where)
			return
		}
		addr = uint32(value)
	}

	if m.breaks[addr] {
		delete(m.breaks, addr)
	} else {
		m.breaks[addr] = true
	}
}

func (m *debugModel) Init() tea.Cmd {
	return nil
}

func (m *debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)

	if m.state == stateBreakpoint {
		if ok {
			switch key.String() {
			case "enter":
				m.toggleBreak(m.input.Value())
				fallthrough
			case "esc":
				m.input.Reset()
				m.input.Blur()
				m.state = stateStep
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s", "n", " ":
		m.step()
	case "c":
		m.resume()
	case "r":
		m.restart()
	case "b":
		m.state = stateBreakpoint
		return m, m.input.Focus()
	}

	return m, nil
}

// cursor returns the listing index of the instruction at the IP.
func (m *debugModel) cursor() int {
	ip := m.emu.Ip()
	n, _ := slices.BinarySearchFunc(m.listing, ip, func(line vm.Line, ip uint32) int {
		switch {
		case line.Offset < ip:
			return -1
		case line.Offset > ip:
			return 1
		}
		return 0
	})
	return n
}

func (m *debugModel) viewListing() string {
	var b strings.Builder

	at := m.cursor()
	first := max(0, at-DEBUG_WINDOW/2)
	last := min(len(m.listing), first+DEBUG_WINDOW)

	syms := m.emu.Program.Symbols()
	for _, line := range m.listing[first:last] {
		mark := "  "
		if m.breaks[line.Offset] {
			mark = "* "
		}

		text := line.String()
		if src, ok := m.emu.Program.Debug(line.Offset); ok && src.Ip == line.Offset {
			text = fmt.Sprintf("%-40s ; %d", text, src.LineNo)
		}
		for _, label := range syms.LabelsAt(line.Offset) {
			b.WriteString("  " + labelStyle.Render(label+":") + "\n")
		}

		if line.Offset == m.emu.Ip() {
			b.WriteString(selectedStyle.Render("> " + text))
		} else {
			b.WriteString(mark + text)
		}
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m *debugModel) viewState() string {
	var b strings.Builder

	machine := m.emu.Vm

	fmt.Fprintf(&b, "ip     %04X\n", machine.Ip)
	fmt.Fprintf(&b, "state  %v\n", machine.Stop())
	fmt.Fprintf(&b, "steps  %d\n", machine.Steps)

	b.WriteString("\nstack\n")
	for n, value := range slices.Backward(machine.Stack.Data) {
		fmt.Fprintf(&b, "  %3d  %v\n", n, value.Typed())
	}

	b.WriteString("\nmemory\n")
	for n, value := range machine.Memory.Data[:min(DEBUG_MEMORY, machine.Memory.Len())] {
		fmt.Fprintf(&b, "  %3d  %v\n", n, value.Typed())
	}

	if len(m.breaks) > 0 {
		b.WriteString("\nbreak\n")
		for _, addr := range slices.Sorted(maps.Keys(m.breaks)) {
			fmt.Fprintf(&b, "  %04X\n", addr)
		}
	}

	return panelStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m *debugModel) viewOutput() string {
	lines := strings.Split(strings.TrimSuffix(m.output.String(), "\n"), "\n")
	if len(lines) > DEBUG_OUTPUT {
		lines = lines[len(lines)-DEBUG_OUTPUT:]
	}

	return resultStyle.Render(strings.Join(lines, "\n"))
}

func (m *debugModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("flint debug"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.viewListing(), " ", m.viewState()))
	b.WriteString("\n\n")

	b.WriteString("output\n")
	b.WriteString(m.viewOutput())
	b.WriteString("\n\n")

	if fault := m.emu.Vm.Fault; fault != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Stopped: %v", fault)))
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.state == stateBreakpoint {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter toggle • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("s step • c continue • b breakpoint • r restart • q quit"))
	}

	return b.String()
}

// runDebug runs the stepping debugger until the user quits.
func runDebug(emu *emulator.Emulator, filename string) error {
	p := tea.NewProgram(newDebugModel(emu, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
