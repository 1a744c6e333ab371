package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generator point G in compressed and uncompressed forms.
const (
	generatorCompressed   = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	generatorUncompressed = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
)

func testKeyPair(t *testing.T) (priv, pub []byte) {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	master, err := MasterFromSeed(seed, false)
	require.NoError(t, err)
	return master.Key, master.PublicKey()
}

func TestSignVerify(t *testing.T) {
	priv, pub := testKeyPair(t)
	hash := sha256.Sum256([]byte("message"))

	sig, err := Sign(priv, hash[:])
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), sig[0], "signature must be DER encoded")

	assert.True(t, Verify(pub, hash[:], sig))

	// Altered hash fails.
	other := sha256.Sum256([]byte("other message"))
	assert.False(t, Verify(pub, other[:], sig))

	// Altered signature fails.
	tampered := append([]byte(nil), sig...)
	tampered[len(tampered)-1] ^= 0x01
	assert.False(t, Verify(pub, hash[:], tampered))

	// Wrong key fails.
	_, otherPub := func() ([]byte, []byte) {
		seed := make([]byte, 32)
		master, err := MasterFromSeed(seed, false)
		require.NoError(t, err)
		return master.Key, master.PublicKey()
	}()
	assert.False(t, Verify(otherPub, hash[:], sig))
}

func TestVerify_AcceptsAllKeyEncodings(t *testing.T) {
	priv, compressed := testKeyPair(t)
	hash := sha256.Sum256([]byte("encodings"))

	sig, err := Sign(priv, hash[:])
	require.NoError(t, err)

	uncompressed, err := DecompressPublicKey(compressed)
	require.NoError(t, err)
	raw := uncompressed[1:] // 64-byte X||Y

	assert.True(t, Verify(compressed, hash[:], sig), "33-byte compressed")
	assert.True(t, Verify(uncompressed, hash[:], sig), "65-byte uncompressed")
	assert.True(t, Verify(raw, hash[:], sig), "64-byte raw")
}

func TestVerify_MalformedInputs(t *testing.T) {
	_, pub := testKeyPair(t)
	hash := sha256.Sum256([]byte("x"))

	assert.False(t, Verify([]byte{0x02, 0x01}, hash[:], []byte{0x30}))
	assert.False(t, Verify(pub, hash[:], []byte("not a signature")))
	assert.False(t, Verify(nil, hash[:], nil))
}

func TestSign_BadPrivateKeyLength(t *testing.T) {
	hash := sha256.Sum256([]byte("x"))
	_, err := Sign([]byte{0x01, 0x02}, hash[:])
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestCompressDecompressPublicKey(t *testing.T) {
	compressed, err := hex.DecodeString(generatorCompressed)
	require.NoError(t, err)
	uncompressed, err := hex.DecodeString(generatorUncompressed)
	require.NoError(t, err)

	got, err := DecompressPublicKey(compressed)
	require.NoError(t, err)
	assert.Equal(t, uncompressed, got)

	back, err := CompressPublicKey(uncompressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, back)

	// 64-byte raw form compresses too.
	back, err = CompressPublicKey(uncompressed[1:])
	require.NoError(t, err)
	assert.Equal(t, compressed, back)

	// Already compressed is returned unchanged.
	back, err = CompressPublicKey(compressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, back)
}

func TestDecompressPublicKey_Errors(t *testing.T) {
	_, err := DecompressPublicKey([]byte{0x02})
	require.ErrorIs(t, err, ErrInvalidPublicKey)

	bad := make([]byte, 33)
	bad[0] = 0x05
	_, err = DecompressPublicKey(bad)
	require.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestDecompress_OddYParity(t *testing.T) {
	// Derive a handful of child keys and check compression roundtrips for
	// both 0x02 and 0x03 prefixes.
	master := vector1Master(t)
	sawEven, sawOdd := false, false
	for i := uint32(0); i < 8; i++ {
		child, err := master.Child(i)
		require.NoError(t, err)
		compressed := child.PublicKey()
		switch compressed[0] {
		case 0x02:
			sawEven = true
		case 0x03:
			sawOdd = true
		}
		uncompressed, err := DecompressPublicKey(compressed)
		require.NoError(t, err)
		back, err := CompressPublicKey(uncompressed)
		require.NoError(t, err)
		assert.Equal(t, compressed, back)
	}
	assert.True(t, sawEven && sawOdd, "expected both parities across child keys")
}
