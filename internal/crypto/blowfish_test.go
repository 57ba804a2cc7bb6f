package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlowfishCipher_SealOpen(t *testing.T) {
	c, err := NewBlowfishCipher([]byte("0123456789abcdef"))
	require.NoError(t, err)

	for _, msg := range []string{"", "a", "meet me at noon", "ровно восемь байт и чуть больше"} {
		sealed := c.Seal([]byte(msg))
		require.Zero(t, len(sealed)%8, "sealed size must be block aligned")

		opened, err := c.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, msg, string(opened))
	}
}

func TestBlowfishCipher_WrongKey(t *testing.T) {
	alice, err := NewBlowfishCipher([]byte("alice-mallory-key"))
	require.NoError(t, err)
	bob, err := NewBlowfishCipher([]byte("bob-mallory-key!!"))
	require.NoError(t, err)

	sealed := alice.Seal([]byte("transfer 100 coins to bob"))

	_, err = bob.Open(sealed)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestBlowfishCipher_OpenRejectsBadSize(t *testing.T) {
	c, err := NewBlowfishCipher([]byte("key!"))
	require.NoError(t, err)

	_, err = c.Open(nil)
	assert.Error(t, err)
	_, err = c.Open(make([]byte, 12))
	assert.Error(t, err)
}

func TestNewBlowfishCipher_InvalidKey(t *testing.T) {
	_, err := NewBlowfishCipher(nil)
	assert.Error(t, err)
}
