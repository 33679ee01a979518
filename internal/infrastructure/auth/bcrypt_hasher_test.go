package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("12345")
	require.NoError(t, err)
	assert.NotEqual(t, "12345", digest)
	assert.True(t, h.Verify("12345", digest))
	assert.False(t, h.Verify("54321", digest))
}

func TestBcryptHasher_UsesFixedCost(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestBcryptHasher_SaltsEveryCall(t *testing.T) {
	h := NewBcryptHasher()

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := NewBcryptHasher()

	for _, digest := range []string{"", "not-a-hash", "$2a$10$short"} {
		assert.False(t, h.Verify("12345", digest), "digest %q", digest)
	}
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	h := NewBcryptHasher()
	long := strings.Repeat("a", 73)

	digest, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, digest))

	// Bytes past bcrypt's 72-byte limit still count.
	assert.False(t, h.Verify(strings.Repeat("a", 72), digest))
	assert.False(t, h.Verify(long+"b", digest))
}

func TestBcryptHasher_MultiByteOverLimit(t *testing.T) {
	h := NewBcryptHasher()
	// 30 runes, 90 bytes.
	pw := strings.Repeat("€", 30)

	digest, err := h.Hash(pw)
	require.NoError(t, err)
	assert.True(t, h.Verify(pw, digest))
}
