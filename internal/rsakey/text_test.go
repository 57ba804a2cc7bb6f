package rsakey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexWidth(t *testing.T) {
	assert.Equal(t, 2, HexWidth(33))   // 32 = 0x20
	assert.Equal(t, 2, HexWidth(77))   // 76 = 0x4c
	assert.Equal(t, 2, HexWidth(256))  // 255 = 0xff
	assert.Equal(t, 3, HexWidth(257))  // 256 = 0x100
	assert.Equal(t, 3, HexWidth(3233)) // 3232 = 0xca0
}

func TestText_RoundTrip(t *testing.T) {
	k, err := New(61, 53, 17)
	require.NoError(t, err)

	for _, msg := range []string{"", "A", "Hello, RSA!", "Привет", "~~~"} {
		hex, err := k.EncryptText(msg)
		require.NoError(t, err)
		assert.Len(t, hex, len([]rune(msg))*3)

		got, err := k.DecryptText(hex)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestText_FixedWidthChunks(t *testing.T) {
	k, err := New(7, 11, 17)
	require.NoError(t, err)

	// 'A'=65, 'B'=66, '\x05'=5 -> 26
	hex, err := k.EncryptText("\x05")
	require.NoError(t, err)
	assert.Equal(t, "1a", hex)

	hex, err = k.EncryptText("AB")
	require.NoError(t, err)
	assert.Len(t, hex, 4)

	got, err := k.DecryptText(hex)
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
}

func TestText_RejectsCharactersAboveModulus(t *testing.T) {
	k, err := New(7, 11, 17)
	require.NoError(t, err)

	_, err = k.EncryptText("Aa")
	assert.ErrorIs(t, err, ErrMessageOutOfRange)
}

func TestText_RejectsInvalidUTF8(t *testing.T) {
	k, err := New(257, 263, 5)
	require.NoError(t, err)

	// \xff would otherwise come back as U+FFFD
	_, err = k.EncryptText("a\xffb")
	assert.ErrorIs(t, err, ErrInvalidText)

	_, err = k.EncryptText(string([]byte{0xed, 0xa0, 0x80})) // surrogate half
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestText_RejectsMalformedCiphertext(t *testing.T) {
	k, err := New(61, 53, 17)
	require.NoError(t, err)

	tests := map[string]string{
		"odd length":   "0a",
		"not hex":      "zzz",
		"signed chunk": "+1a",
		"above n":      "fff",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := k.DecryptText(in)
			assert.ErrorIs(t, err, ErrMalformedCipher)
		})
	}
}
