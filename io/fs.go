package io

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ezrec/flint/vm"
)

const (
	SYMBOLS_SUFFIX = ".fsym" // Suffix of the symbols file beside a binary.
)

// CreateFS defines a file system interface that supports creating files.
// It extends fs.FS with write capabilities for saving assembled programs.
type CreateFS interface {
	fs.FS
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
}

// dirFS is a CreateFS rooted at a host directory.
type dirFS struct {
	fs.FS
	dir string
}

// DirFS returns a CreateFS for the host directory dir.
func DirFS(dir string) CreateFS {
	return &dirFS{FS: os.DirFS(dir), dir: dir}
}

// Create creates a new file for writing.
func (dfs *dirFS) Create(name string) (file io.WriteCloser, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
		return
	}

	file, err = os.Create(filepath.Join(dfs.dir, filepath.FromSlash(name)))
	return
}

// SymbolsName returns the name of the symbols file for a binary.
func SymbolsName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + SYMBOLS_SUFFIX
}

// writeFile creates name and fills it with data.
func writeFile(fsys CreateFS, name string, data []byte) (err error) {
	file, err := fsys.Create(name)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	_, err = file.Write(data)
	return
}

// SaveProgram writes the binary image of prog to name. If symbols is set the
// debug information is written to the matching symbols file.
func SaveProgram(fsys CreateFS, name string, prog *vm.Program, symbols bool) (err error) {
	err = writeFile(fsys, name, prog.Binary())
	if err != nil || !symbols {
		return
	}

	data, err := vm.MarshalSymbols(prog.Symbols())
	if err != nil {
		return
	}

	err = writeFile(fsys, SymbolsName(name), data)
	return
}

// LoadProgram reads the binary image name, and its symbols file if one exists.
func LoadProgram(fsys fs.FS, name string) (prog *vm.Program, err error) {
	image, err := fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	prog, err = vm.LoadProgram(image)
	if err != nil {
		return
	}

	data, err := fs.ReadFile(fsys, SymbolsName(name))
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
		return
	}
	if err != nil {
		return
	}

	syms, err := vm.UnmarshalSymbols(data)
	if err != nil {
		return
	}

	prog.Labels = syms.Labels
	prog.Lines = syms.Lines

	return
}
