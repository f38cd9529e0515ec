package utils

import (
	"testing"

	"NovaCTF/config"
	"github.com/stretchr/testify/assert"
)

func TestHmacFlagNormalizesWhitespace(t *testing.T) {
	config.C.FlagPepper = "test-pepper"

	base := HmacFlag("flag{abc}")
	assert.Equal(t, base, HmacFlag("  flag{abc}  "))
	assert.Equal(t, base, HmacFlag("flag{abc}\n"))
	assert.NotEqual(t, base, HmacFlag("flag{abd}"))
}

func TestHmacFlagDependsOnPepper(t *testing.T) {
	config.C.FlagPepper = "pepper-one"
	first := HmacFlag("flag{abc}")

	config.C.FlagPepper = "pepper-two"
	assert.NotEqual(t, first, HmacFlag("flag{abc}"))
}

func TestVerifyFlag(t *testing.T) {
	config.C.FlagPepper = "test-pepper"
	stored := HmacFlag("flag{abc}")

	assert.True(t, VerifyFlag(stored, "flag{abc}"))
	assert.True(t, VerifyFlag(stored, " flag{abc} "))
	assert.False(t, VerifyFlag(stored, "flag{abd}"))
	assert.False(t, VerifyFlag("", "flag{abc}"))
}
