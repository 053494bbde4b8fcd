package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, Plain, s)

	s, err = ParseScheme(" BCRYPT ")
	require.NoError(t, err)
	assert.Equal(t, Bcrypt, s)

	_, err = ParseScheme("md5")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestPlainScheme(t *testing.T) {
	h := NewHasher(Plain)
	stored, err := h.Hash("123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", stored)
	assert.True(t, h.Verify(stored, "123456"))
	assert.False(t, h.Verify(stored, "1234567"))
}

func TestBcryptScheme(t *testing.T) {
	h := NewHasher(Bcrypt)
	stored, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored)
	assert.True(t, h.Verify(stored, "s3cret"))
	assert.False(t, h.Verify(stored, "wrong"))

	// plain rows never verify once bcrypt is enforced
	assert.False(t, h.Verify("s3cret", "s3cret"))

	// bcrypt rows verify while still running with plain
	assert.True(t, NewHasher(Plain).Verify(stored, "s3cret"))
}
