package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, FILENAME)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, t.TempDir(), `
[vm]
max_steps = 1000
memory_limit = 64
stack_limit = 32
verbose = true

[assembler]
header = true
symbols = true
defines = { SLOTS = "8", SCALE = "0.5" }

[output]
typed = true
color = "never"
`)

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal(path, c.Path)
	assert.Equal(1000, c.Vm.MaxSteps)
	assert.Equal(64, c.Vm.MemoryLimit)
	assert.Equal(32, c.Vm.StackLimit)
	assert.True(c.Vm.Verbose)
	assert.True(c.Assembler.Header)
	assert.True(c.Assembler.Symbols)
	assert.Equal(map[string]string{"SLOTS": "8", "SCALE": "0.5"}, c.Assembler.Defines)
	assert.True(c.Output.Typed)
	assert.Equal(COLOR_NEVER, c.Output.Color)
	assert.Empty(c.Unknown)
}

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, t.TempDir(), `
[vm]
max_steps = 5
`)

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal(5, c.Vm.MaxSteps)
	assert.Equal(0, c.Vm.StackLimit)
	assert.Equal(MEMORY_LIMIT, c.Vm.MemoryLimit)
	assert.False(c.Assembler.Header)
	assert.Equal(COLOR_AUTO, c.Output.Color)
}

func TestLoadUnknown(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, t.TempDir(), `
[vm]
max_stepz = 5
`)

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal([]string{"vm.max_stepz"}, c.Unknown)
}

func TestLoadErrors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)

	path := writeConfig(t, dir, "[vm\n")
	_, err = Load(path)
	assert.Error(err)

	path = writeConfig(t, dir, "[output]\ncolor = \"sometimes\"\n")
	_, err = Load(path)
	assert.ErrorIs(err, ErrColor)

	path = writeConfig(t, dir, "[vm]\nstack_limit = -1\n")
	_, err = Load(path)
	assert.ErrorIs(err, ErrLimit)
}

func TestFindAndLoad(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	writeConfig(t, root, "[vm]\nmax_steps = 7\n")

	sub := filepath.Join(root, "a", "b")
	assert.NoError(os.MkdirAll(sub, 0755))

	c, err := FindAndLoad(sub)
	assert.NoError(err)
	assert.Equal(7, c.Vm.MaxSteps)
	assert.Equal(filepath.Join(root, FILENAME), c.Path)
}

func TestFindAndLoadNone(t *testing.T) {
	assert := assert.New(t)

	// A temporary directory normally has no flint.toml above it.
	c, err := FindAndLoad(t.TempDir())
	assert.NoError(err)
	if c.Path == "" {
		assert.Equal(Default(), c)
	}
}
