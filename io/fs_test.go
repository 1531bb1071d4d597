package io

import (
	"bytes"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/flint/vm"
)

// memFS is an in-memory CreateFS.
type memFS struct {
	fstest.MapFS
}

type memFile struct {
	bytes.Buffer
	fsys memFS
	name string
}

func (mf *memFile) Close() error {
	mf.fsys.MapFS[mf.name] = &fstest.MapFile{Data: mf.Bytes(), Mode: 0o644}
	return nil
}

func (mfs memFS) Create(name string) (io.WriteCloser, error) {
	return &memFile{fsys: mfs, name: name}, nil
}

func TestSymbolsName(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("prog.fsym", SymbolsName("prog.flnt"))
	assert.Equal("dir/prog.fsym", SymbolsName("dir/prog"))
}

func TestSaveLoadProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &vm.Assembler{Header: true}
	prog, err := asm.Parse(bytes.NewBufferString("start: BIPUSH 1\nJMP start\n"))
	assert.NoError(err)

	fsys := memFS{MapFS: fstest.MapFS{}}
	assert.NoError(SaveProgram(fsys, "loop.flnt", prog, true))

	_, err = fs.Stat(fsys, "loop.fsym")
	assert.NoError(err)

	loaded, err := LoadProgram(fsys, "loop.flnt")
	assert.NoError(err)
	assert.True(loaded.Header)
	assert.Equal(prog.Code, loaded.Code)
	assert.Equal(prog.Labels, loaded.Labels)
	assert.Equal(prog.Lines, loaded.Lines)
}

func TestLoadProgram_NoSymbols(t *testing.T) {
	assert := assert.New(t)

	code := new(vm.Builder).Op(vm.OP_HALT).Bytes()
	fsys := fstest.MapFS{"raw.bin": &fstest.MapFile{Data: code}}

	prog, err := LoadProgram(fsys, "raw.bin")
	assert.NoError(err)
	assert.False(prog.Header)
	assert.Equal(code, prog.Code)
	assert.Empty(prog.Lines)

	_, err = LoadProgram(fsys, "missing.bin")
	assert.ErrorIs(err, fs.ErrNotExist)
}

func TestLoadProgram_BadSymbols(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"raw.bin":  &fstest.MapFile{Data: []byte{byte(vm.OP_HALT)}},
		"raw.fsym": &fstest.MapFile{Data: []byte{0xff, 0x00}},
	}

	_, err := LoadProgram(fsys, "raw.bin")
	assert.ErrorIs(err, vm.ErrSymbols)
}

func TestDirFS(t *testing.T) {
	assert := assert.New(t)

	fsys := DirFS(t.TempDir())
	prog := &vm.Program{Code: []byte{byte(vm.OP_NOP), byte(vm.OP_HALT)}}

	assert.NoError(SaveProgram(fsys, "nop.bin", prog, false))

	data, err := fs.ReadFile(fsys, "nop.bin")
	assert.NoError(err)
	assert.Equal(prog.Code, data)

	_, err = fsys.Create("../escape")
	assert.ErrorIs(err, fs.ErrInvalid)
}
