package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldCipherRoundTrip(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		key := make([]byte, size)
		for i := range key {
			key[i] = byte(i)
		}
		c, err := NewFieldCipher(key)
		require.NoError(t, err)
		assert.True(t, c.Enabled())

		for _, msg := range []string{"x", "exactly16bytes!!", "a longer contact message with ümlauts"} {
			sealed, err := c.Seal(msg)
			require.NoError(t, err)
			assert.NotEqual(t, msg, sealed)

			opened, err := c.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, msg, opened)
		}
	}
}

func TestFieldCipherUsesFreshIV(t *testing.T) {
	c, err := NewFieldCipher(make([]byte, 32))
	require.NoError(t, err)

	a, err := c.Seal("same")
	require.NoError(t, err)
	b, err := c.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFieldCipherWithoutKeyPassesThrough(t *testing.T) {
	c, err := NewFieldCipher(nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	sealed, err := c.Seal("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", sealed)
}

func TestFieldCipherRejectsBadInput(t *testing.T) {
	_, err := NewFieldCipher([]byte("short"))
	assert.Error(t, err)

	c, err := NewFieldCipher(make([]byte, 16))
	require.NoError(t, err)

	_, err = c.Open("not-hex")
	assert.Error(t, err)
	_, err = c.Open("00112233")
	assert.Error(t, err)

	other, err := NewFieldCipher(append(make([]byte, 15), 1))
	require.NoError(t, err)
	sealed, err := c.Seal("secret message")
	require.NoError(t, err)
	if opened, err := other.Open(sealed); err == nil {
		assert.NotEqual(t, "secret message", opened)
	}
}
