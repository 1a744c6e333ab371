package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase58_KnownVector(t *testing.T) {
	assert.Equal(t, "2NEpo7TZRRrLZSi2U", Base58Encode([]byte("Hello World!")))

	decoded, err := Base58Decode("2NEpo7TZRRrLZSi2U")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello World!"), decoded)
}

func TestBase58_LeadingZeros(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x01, 0x02}
	encoded := Base58Encode(payload)
	assert.Equal(t, "11", encoded[:2])

	decoded, err := Base58Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestBase58_Empty(t *testing.T) {
	assert.Equal(t, "", Base58Encode(nil))

	decoded, err := Base58Decode("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestBase58Decode_InvalidCharacters(t *testing.T) {
	for _, s := range []string{"0", "O", "I", "l", "abc!def"} {
		_, err := Base58Decode(s)
		assert.ErrorIs(t, err, ErrInvalidBase58, "input %q", s)
	}
}

func TestBase58Check_Roundtrip(t *testing.T) {
	payloads := [][]byte{
		{0x00},
		{0x00, 0x01, 0x02, 0x03},
		[]byte("arbitrary payload bytes"),
	}
	for _, payload := range payloads {
		encoded := Base58CheckEncode(payload)
		decoded, err := Base58CheckDecode(encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	}
}

func TestBase58Check_BadChecksum(t *testing.T) {
	encoded := Base58CheckEncode([]byte("payload"))
	corrupted := []byte(encoded)
	if corrupted[0] == '2' {
		corrupted[0] = '3'
	} else {
		corrupted[0] = '2'
	}
	_, err := Base58CheckDecode(string(corrupted))
	require.ErrorIs(t, err, ErrInvalidChecksum)
}

func TestBase58Check_TooShort(t *testing.T) {
	_, err := Base58CheckDecode("1")
	require.ErrorIs(t, err, ErrInvalidChecksum)
}
