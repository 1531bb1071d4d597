package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLocale()
	assert.Equal("line 3 'HALT 1' bad", From("line %d '%v' %v", 3, "HALT 1", "bad"))
	assert.Equal("0x000e: NOP", From("0x%04x: %v", 14, "NOP"))

	SetLocale("fr-FR", DEFAULT_LOCALE)
	assert.Equal("stack underflow", From("stack underflow"))
}
