package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRefCode(t *testing.T) {
	code := NewRefCode()
	assert.True(t, ValidRefCode(code), "generated code %q is not valid", code)
	assert.True(t, strings.HasPrefix(code, "SUB-"))
	assert.Len(t, code, 12)
}

func TestValidRefCode(t *testing.T) {
	assert.True(t, ValidRefCode("SUB-A1B2C3D4"))
	assert.True(t, ValidRefCode("sub-a1b2c3d4"))
	assert.True(t, ValidRefCode("  SUB-A1B2C3D4  "))

	assert.False(t, ValidRefCode(""))
	assert.False(t, ValidRefCode("SUB-"))
	assert.False(t, ValidRefCode("SUB-A1B2C3"))
	assert.False(t, ValidRefCode("LST-A1B2C3D4"))
	// U never appears in the alphabet.
	assert.False(t, ValidRefCode("SUB-UUUUUUUU"))
}
