// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

const (
	COMMENT_MARKER = ";" // Starts a comment running to the end of the line.
	MACRO_DEPTH    = 16  // Maximum macro expansion nesting.
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"INT_MIN":       fmt.Sprintf("%d", math.MinInt32),
	"INT_MAX":       fmt.Sprintf("%d", math.MaxInt32),
	"CMP_LT":        fmt.Sprintf("%d", CMP_LT),
	"CMP_EQ":        fmt.Sprintf("%d", CMP_EQ),
	"CMP_GT":        fmt.Sprintf("%d", CMP_GT),
	"CMP_UNORDERED": fmt.Sprintf("%d", CMP_UNORDERED),
	"HEADER_SIZE":   fmt.Sprintf("%d", HEADER_SIZE),
}

// sourceLine is one assembly line after comment stripping, equate and
// expression substitution, and macro expansion.
type sourceLine struct {
	LineNo int      // Line number in the input.
	Text   string   // Line text, for error reporting.
	Labels []string // Labels declared on the line.
	Words  []string // Mnemonic and operands, if any.
}

// Assembler is a two pass macro assembler for the flint machine.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Header  bool // If set, assemble an FLNT image with code after the header.

	predefine  map[string]string   // Predefines
	Label      map[string]uint32   // Map of labels to addresses.
	Equate     map[string]string   // Map of equates.
	Macro      map[string](*Macro) // Map of macros.
	expansions int                 // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Assemble assembles text into a raw instruction stream.
func Assemble(text string) (code []byte, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(text))
	if err != nil {
		return
	}

	code = prog.Code
	return
}

// parseInt reads a decimal integer, or one with an explicit 0x, 0o or 0b
// prefix. Leading zeros stay decimal.
func parseInt(word string) (value int64, err error) {
	sign := ""
	digits := word
	if len(digits) > 0 && (digits[0] == '-' || digits[0] == '+') {
		sign, digits = digits[:1], digits[1:]
	}

	if len(digits) > 1 && digits[0] == '0' && !strings.ContainsRune("xXoObB", rune(digits[1])) {
		digits = strings.TrimLeft(digits, "0")
		if len(digits) == 0 || digits[0] == '_' {
			digits = "0" + digits
		}
	}

	return strconv.ParseInt(sign+digits, 0, 64)
}

// valueOf returns the integer value of a simple word.
func valueOf(word string) (value int64, err error) {
	value, err = parseInt(word)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// starlarkOf converts a numeric equate to a Starlark value.
func starlarkOf(word string) (value starlark.Value, ok bool) {
	v64, err := parseInt(word)
	if err == nil {
		return starlark.MakeInt64(v64), true
	}

	f64, err := strconv.ParseFloat(word, 64)
	if err == nil {
		return starlark.Float(f64), true
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value string, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		st, ok := starlarkOf(str)
		if !ok {
			// Ignore non-numeric equates. They may be mnemonics
			// or something else.
			continue
		}
		pred[key] = st
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	switch rc := dict["rc"].(type) {
	case starlark.Int:
		st_int64, ok := rc.Int64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = strconv.FormatInt(st_int64, 10)
	case starlark.Float:
		value = strconv.FormatFloat(float64(rc), 'g', -1, 64)
	default:
		err = ErrParseExpression(expr)
	}
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// parseLine expands a single line into assembly lines.
func (asm *Assembler) parseLine(line string, lineno int, depth int) (lines []sourceLine, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return value
	})
	if err != nil {
		return
	}

	words := strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	var labels []string
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !reLabel.MatchString(label) {
			err = ErrLabelSyntax
			return
		}
		labels = append(labels, label)
		words = words[1:]
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// .macro processing
	var macro *Macro
	if len(words) > 0 {
		macro = asm.Macro[words[0]]
	}
	if macro == nil {
		lines = append(lines, sourceLine{LineNo: lineno, Text: line, Labels: labels, Words: words})
		return
	}

	if depth >= MACRO_DEPTH {
		err = ErrMacroRecursion
		return
	}

	name := words[0]
	args := words[1:]
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	if len(labels) > 0 {
		lines = append(lines, sourceLine{LineNo: lineno, Text: line, Labels: labels})
	}

	// Turn args into equs
	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	defer func() { asm.Equate = old_equate }()

	asm.expansions++
	local := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, text := range macro.Lines {
		lineno := macro.LineNo + n

		text = strings.ReplaceAll(text, "@", local)
		var expanded []sourceLine
		expanded, err = asm.parseLine(text, lineno, depth+1)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
		lines = append(lines, expanded...)
	}

	return
}

// Parse parses an input stream into a Program.
//
// Comments start at the first ';' of a line and are removed before the
// line is split into words.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err == nil {
			return
		}
		prog = nil
		var se *ErrSyntax
		if !errors.As(err, &se) {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint32, 16)
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.expansions = 0

	var lines []sourceLine

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			Logger().Debug("asm", zap.Int("line", lineno), zap.String("text", text))
		}

		text, _, _ = strings.Cut(text, COMMENT_MARKER)
		line = strings.TrimSpace(text)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		var parsed []sourceLine
		parsed, err = asm.parseLine(line, lineno, 0)
		if err != nil {
			return
		}

		lines = append(lines, parsed...)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	prog = &Program{Header: asm.Header}

	prog.Lines, err = asm.locate(lines, prog.Origin())
	if err != nil {
		return
	}

	prog.Code, err = encode(lines, asm.Label)
	if err != nil {
		return
	}

	prog.Labels = maps.Clone(asm.Label)

	return
}

// locate is the first pass: it assigns an address to every label and every
// instruction, starting at origin.
func (asm *Assembler) locate(lines []sourceLine, origin uint32) (infos []LineInfo, err error) {
	ip := origin

	for _, sl := range lines {
		for _, label := range sl.Labels {
			_, ok := asm.Label[label]
			if ok {
				err = &ErrSyntax{LineNo: sl.LineNo, Line: sl.Text, Err: ErrLabelDuplicate}
				return
			}
			asm.Label[label] = ip
		}

		if len(sl.Words) == 0 {
			continue
		}

		op, ok := LookupName(sl.Words[0])
		if !ok {
			err = &ErrSyntax{LineNo: sl.LineNo, Line: sl.Text, Err: ErrMnemonic(sl.Words[0])}
			return
		}

		size := op.Size()
		infos = append(infos, LineInfo{Ip: ip, Size: size, LineNo: sl.LineNo, Words: sl.Words})
		ip += uint32(size)
	}

	return
}

// encode is the second pass: it emits the instruction stream using the
// labels resolved by the first pass.
func encode(lines []sourceLine, labels map[string]uint32) (code []byte, err error) {
	for _, sl := range lines {
		if len(sl.Words) == 0 {
			continue
		}

		code, err = encodeWords(code, sl.Words, labels)
		if err != nil {
			err = &ErrSyntax{LineNo: sl.LineNo, Line: sl.Text, Err: err}
			code = nil
			return
		}
	}

	return
}

// encodeWords appends a single instruction.
func encodeWords(code []byte, words []string, labels map[string]uint32) ([]byte, error) {
	op, ok := LookupName(words[0])
	if !ok {
		return code, ErrMnemonic(words[0])
	}
	info, _ := Lookup(op)

	args := words[1:]
	need := 0
	if info.Operand != OPERAND_NONE {
		need = 1
	}
	switch {
	case len(args) < need:
		return code, fmt.Errorf("%w: %v", ErrOperandMissing, info.Name)
	case len(args) > need:
		return code, fmt.Errorf("%w: %v", ErrOperandExtra, info.Name)
	}

	code = append(code, byte(op))

	switch info.Operand {
	case OPERAND_U8:
		value, err := valueOf(args[0])
		if err != nil {
			return code, err
		}
		if value < math.MinInt8 || value > math.MaxUint8 {
			return code, fmt.Errorf("%w: %v", ErrOperandRange, args[0])
		}
		code = AppendUint8(code, uint8(value))
	case OPERAND_I32, OPERAND_U32:
		addr, ok := labels[args[0]]
		if ok {
			code = AppendUint32(code, addr)
			break
		}
		value, err := valueOf(args[0])
		if err != nil {
			if reLabel.MatchString(args[0]) {
				err = ErrLabelMissing(args[0])
			}
			return code, err
		}
		if value < math.MinInt32 || value > math.MaxUint32 {
			return code, fmt.Errorf("%w: %v", ErrOperandRange, args[0])
		}
		code = AppendUint32(code, uint32(value))
	case OPERAND_F64:
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			var ne *strconv.NumError
			if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
				return code, ErrParseNumber(args[0])
			}
		}
		code = AppendFloat64(code, value)
	}

	return code, nil
}
