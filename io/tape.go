package io

import (
	"fmt"
	"io"

	"github.com/ezrec/flint/vm"
)

// Tape writes every printed value to Output, one per line.
type Tape struct {
	Output io.Writer
	Typed  bool // If set, values are written with their kind, as in Int(3).

	count int
}

var _ Channel = (*Tape)(nil)

// Rewind resets the printed value count. Output already written stays.
func (tc *Tape) Rewind() {
	tc.count = 0
}

// Count returns the number of values printed since the last Rewind.
func (tc *Tape) Count() int {
	return tc.count
}

// Print formats a value onto the output.
func (tc *Tape) Print(value vm.Value) (err error) {
	if tc.Output == nil {
		err = ErrNoOutput
		return
	}

	text := value.String()
	if tc.Typed {
		text = value.Typed()
	}

	_, err = fmt.Fprintln(tc.Output, text)
	if err != nil {
		return
	}

	tc.count++

	return
}
