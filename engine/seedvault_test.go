package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedVault_Roundtrip(t *testing.T) {
	seed := []byte("a 64 byte seed would normally come out of pbkdf2 on a mnemonic!")

	blob, err := EncryptSeed(seed, "correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, string(blob), string(seed))

	recovered, err := DecryptSeed(blob, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, seed, recovered)
}

func TestSeedVault_UniqueBlobs(t *testing.T) {
	seed := []byte("same seed twice")

	first, err := EncryptSeed(seed, "pw")
	require.NoError(t, err)
	second, err := EncryptSeed(seed, "pw")
	require.NoError(t, err)

	// Fresh salt and nonce every time.
	assert.NotEqual(t, first, second)
}

func TestSeedVault_WrongPassword(t *testing.T) {
	blob, err := EncryptSeed([]byte("secret seed"), "right")
	require.NoError(t, err)

	_, err = DecryptSeed(blob, "wrong")
	require.ErrorIs(t, err, ErrSeedDecryptFailed)
}

func TestSeedVault_TamperedBlob(t *testing.T) {
	blob, err := EncryptSeed([]byte("secret seed"), "pw")
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xff
	_, err = DecryptSeed(blob, "pw")
	require.ErrorIs(t, err, ErrSeedDecryptFailed)
}

func TestSeedVault_EmptySeed(t *testing.T) {
	_, err := EncryptSeed(nil, "pw")
	require.ErrorIs(t, err, ErrInvalidSeed)
}

func TestSeedVault_TruncatedBlob(t *testing.T) {
	_, err := DecryptSeed([]byte("short"), "pw")
	require.ErrorIs(t, err, ErrSeedDecryptFailed)
}
