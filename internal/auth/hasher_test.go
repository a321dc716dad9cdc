package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := DefaultHasher()

	for _, pw := range []string{"secret1", "correct horse battery staple", "señha-ütf8"} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		require.NotEqual(t, pw, hash, "hash must never equal the plaintext")
		require.True(t, h.Verify(hash, pw))
		require.False(t, h.Verify(hash, pw+"x"))
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	h := DefaultHasher()
	require.False(t, h.Verify("not-a-bcrypt-hash", "whatever"))
	require.False(t, h.Verify("", ""))
}
