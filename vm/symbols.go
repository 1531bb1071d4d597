package vm

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// LineInfo maps an assembled instruction back to its source line.
type LineInfo struct {
	Ip     uint32   `cbor:"ip"`
	Size   int      `cbor:"size"`
	LineNo int      `cbor:"line"`
	Words  []string `cbor:"words"`
}

// Symbols is the debug information written beside a program binary.
type Symbols struct {
	Origin uint32            `cbor:"origin"`
	Labels map[string]uint32 `cbor:"labels"`
	Lines  []LineInfo        `cbor:"lines"`
}

// symbolsEncMode uses canonical CBOR so equal symbols encode identically.
var symbolsEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	symbolsEncMode = em
}

// MarshalSymbols serializes symbols to CBOR bytes.
func MarshalSymbols(syms *Symbols) ([]byte, error) {
	return symbolsEncMode.Marshal(syms)
}

// UnmarshalSymbols deserializes symbols from CBOR bytes. Lines are returned
// sorted by IP.
func UnmarshalSymbols(data []byte) (*Symbols, error) {
	var syms Symbols
	if err := cbor.Unmarshal(data, &syms); err != nil {
		return nil, errors.Join(ErrSymbols, err)
	}

	slices.SortFunc(syms.Lines, func(a, b LineInfo) int {
		return cmp.Compare(a.Ip, b.Ip)
	})

	return &syms, nil
}

// Lookup finds the line containing ip.
func (syms *Symbols) Lookup(ip uint32) (line LineInfo, ok bool) {
	n, found := slices.BinarySearchFunc(syms.Lines, ip, func(li LineInfo, ip uint32) int {
		switch {
		case ip < li.Ip:
			return 1
		case ip >= li.Ip+uint32(li.Size):
			return -1
		}
		return 0
	})
	if !found {
		return
	}

	return syms.Lines[n], true
}

// LabelsAt returns the sorted names of the labels at addr.
func (syms *Symbols) LabelsAt(addr uint32) (names []string) {
	for label, at := range syms.Labels {
		if at == addr {
			names = append(names, label)
		}
	}
	slices.Sort(names)

	return
}
