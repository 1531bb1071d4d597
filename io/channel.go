// Package io provides the PRINT destinations of the flint machine and the
// file helpers used to save and load assembled programs.
// Tape formats values onto an io.Writer, Temporary keeps them in a bounded
// queue for later inspection.
package io

import (
	"github.com/ezrec/flint/vm"
)

// Channel is a PRINT destination that can be rewound between runs.
type Channel interface {
	vm.Printer
	// Rewind resets the channel to its initial state.
	Rewind()
}
