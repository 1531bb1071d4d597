// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ezrec/flint/config"
	"github.com/ezrec/flint/emulator"
	"github.com/ezrec/flint/io"
	"github.com/ezrec/flint/vm"
)

const (
	SOURCE_SUFFIX = ".fasm" // Assembly source files.
	IMAGE_SUFFIX  = ".flnt" // Images with an FLNT header.
	RAW_SUFFIX    = ".bin"  // Raw instruction streams.
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %v <command> [flags] file\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  asm    assemble a "+SOURCE_SUFFIX+" file")
	fmt.Fprintln(os.Stderr, "  dis    disassemble a binary or source file")
	fmt.Fprintln(os.Stderr, "  run    run a binary or source file")
	fmt.Fprintln(os.Stderr, "  debug  step through a program interactively")
	os.Exit(2)
}

// options shared by all commands.
type options struct {
	config  string
	verbose bool
	color   string
}

func (opt *options) register(fs *flag.FlagSet) {
	fs.StringVar(&opt.config, "c", "", "flint.toml configuration file")
	fs.BoolVar(&opt.verbose, "v", false, "Verbose mode")
	fs.StringVar(&opt.color, "color", "", "Color output: auto, always, never")
}

// load reads the configuration and installs the logger.
func (opt *options) load() (cfg *config.Config) {
	var err error
	if len(opt.config) != 0 {
		cfg, err = config.Load(opt.config)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if opt.verbose {
		cfg.Vm.Verbose = true
	}
	if len(opt.color) != 0 {
		cfg.Output.Color = opt.color
		if err := cfg.Validate(); err != nil {
			log.Fatalf("%v", err)
		}
	}

	logger := zap.NewNop()
	if cfg.Vm.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	vm.SetLogger(logger)

	for _, key := range cfg.Unknown {
		logger.Warn("unknown configuration key", zap.String("path", cfg.Path), zap.String("key", key))
	}

	return
}

// useColor decides whether listings are styled.
func useColor(cfg *config.Config) bool {
	switch cfg.Output.Color {
	case config.COLOR_ALWAYS:
		return true
	case config.COLOR_NEVER:
		return false
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newEmulator creates an emulator with the configured limits.
func newEmulator(cfg *config.Config) (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	emu.Verbose = cfg.Vm.Verbose
	emu.MaxSteps = cfg.Vm.MaxSteps
	emu.Vm.Stack.Limit = cfg.Vm.StackLimit
	emu.Vm.Memory.Limit = cfg.Vm.MemoryLimit
	emu.Tape.Typed = cfg.Output.Typed

	return
}

// assemble parses a source file, with the emulator and configured defines.
func assemble(cfg *config.Config, emu *emulator.Emulator, filename string, header bool) (prog *vm.Program, err error) {
	inf, err := os.Open(filename)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &vm.Assembler{
		Verbose: cfg.Vm.Verbose,
		Header:  header,
	}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	for key, value := range cfg.Assembler.Defines {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)
	return
}

// loadProgram assembles a source file, or loads a binary and its symbols.
func loadProgram(cfg *config.Config, emu *emulator.Emulator, filename string) (prog *vm.Program, err error) {
	if filepath.Ext(filename) == SOURCE_SUFFIX {
		return assemble(cfg, emu, filename, cfg.Assembler.Header)
	}

	dir, name := filepath.Split(filename)
	if len(dir) == 0 {
		dir = "."
	}

	return io.LoadProgram(os.DirFS(dir), name)
}

// outputName derives the binary name for a source file.
func outputName(filename string, header bool) string {
	suffix := RAW_SUFFIX
	if header {
		suffix = IMAGE_SUFFIX
	}

	return strings.TrimSuffix(filename, filepath.Ext(filename)) + suffix
}

func cmdAsm(args []string) {
	var opt options
	var output string
	var header bool
	var symbols bool

	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	opt.register(fs)
	fs.StringVar(&output, "o", "", "Output binary")
	fs.BoolVar(&header, "header", false, "Emit an FLNT image")
	fs.BoolVar(&symbols, "sym", false, "Write a "+io.SYMBOLS_SUFFIX+" symbols file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("asm: expected one source file, got %v", fs.Args())
	}
	source := fs.Arg(0)

	cfg := opt.load()
	header = header || cfg.Assembler.Header
	symbols = symbols || cfg.Assembler.Symbols

	prog, err := assemble(cfg, newEmulator(cfg), source, header)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	if len(output) == 0 {
		output = outputName(source, header)
	}

	dir, name := filepath.Split(output)
	if len(dir) == 0 {
		dir = "."
	}

	err = io.SaveProgram(io.DirFS(dir), name, prog, symbols)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}

func cmdDis(args []string) {
	var opt options

	fs := flag.NewFlagSet("dis", flag.ExitOnError)
	opt.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("dis: expected one file, got %v", fs.Args())
	}
	filename := fs.Arg(0)

	cfg := opt.load()

	prog, err := loadProgram(cfg, newEmulator(cfg), filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	style := plainListing
	if useColor(cfg) {
		style = colorListing
	}

	fmt.Print(renderListing(prog, style))
}

func cmdRun(args []string) {
	var opt options
	var typed bool
	var maxSteps int

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	opt.register(fs)
	fs.BoolVar(&typed, "typed", false, "Print values with their kind")
	fs.IntVar(&maxSteps, "max-steps", 0, "Stop after this many instructions")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("run: expected one file, got %v", fs.Args())
	}
	filename := fs.Arg(0)

	cfg := opt.load()
	if typed {
		cfg.Output.Typed = true
	}
	if maxSteps > 0 {
		cfg.Vm.MaxSteps = maxSteps
	}

	emu := newEmulator(cfg)
	emu.Tape.Output = os.Stdout

	prog, err := loadProgram(cfg, emu, filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	result, err := emu.Run()
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	vm.Logger().Info("stopped",
		zap.Stringer("stop", result.Stop),
		zap.Int("steps", result.Steps),
		zap.Int("depth", len(result.Stack)))
	if result.Fault != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", filename, result.Fault)
	}
}

func cmdDebug(args []string) {
	var opt options

	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	opt.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("debug: expected one file, got %v", fs.Args())
	}
	filename := fs.Arg(0)

	// The TUI owns the terminal, so tracing stays off.
	opt.verbose = false
	cfg := opt.load()
	cfg.Vm.Verbose = false

	emu := newEmulator(cfg)

	prog, err := loadProgram(cfg, emu, filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
	emu.Program = prog

	err = runDebug(emu, filename)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "asm":
		cmdAsm(args)
	case "dis":
		cmdDis(args)
	case "run":
		cmdRun(args)
	case "debug":
		cmdDebug(args)
	default:
		usage()
	}
}
