package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader(t *testing.T) {
	assert := assert.New(t)

	header := NewHeader(10)
	data := header.Bytes()
	assert.Len(data, HEADER_SIZE)
	assert.Equal([]byte{'F', 'L', 'N', 'T', 0, 0, 0, 0, 14, 0, 0, 0, 24, 14}, data)

	image := append(data, make([]byte, 10)...)
	parsed, err := ParseHeader(image)
	assert.NoError(err)
	assert.Equal(header, parsed)
}

func TestHeaderErrors(t *testing.T) {
	assert := assert.New(t)

	valid := append(NewHeader(2).Bytes(), 0, 0)

	mutate := func(offset int, value byte) []byte {
		image := append([]byte{}, valid...)
		image[offset] = value
		return image
	}

	table := []struct {
		name  string
		image []byte
		err   error
	}{
		{"short", valid[:HEADER_SIZE-1], ErrHeaderShort},
		{"magic", mutate(0, 'X'), ErrHeaderMagic},
		{"size", mutate(13, 13), ErrHeaderRange},
		{"code-before-header", mutate(8, 2), ErrHeaderRange},
		{"data-before-code", mutate(12, 13), ErrHeaderRange},
		{"data-past-end", mutate(12, 17), ErrHeaderRange},
	}

	for _, entry := range table {
		_, err := ParseHeader(entry.image)
		assert.ErrorIs(err, entry.err, entry.name)
	}

	assert.True(HasHeader(valid))
	assert.False(HasHeader([]byte("FLN")))
}
