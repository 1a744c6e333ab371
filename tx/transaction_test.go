package tx

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The block 170 transaction, the first P2PK spend on the network.
const (
	block170TxHex = "0100000001c997a5e56e104102fa209c6a852dd90660a20b2d9c352423edce25857fcd3704000000004847304402204e45e16932b8af514961a1d3a1a25fdf3f4f7732e9d624c6c61548ab5fb8cd410220181522ec8eca07de4860a4acdd12909d831cc56cbbac4622082221a8768d1d0901ffffffff0200ca9a3b00000000434104ae1a62fe09c5f51b13905f07f06b99a2f7159b2225f374cd378d71302fa28414e7aab37397f554a7df5f142c21c1b7303b8a0626f1baded5c72a704f7e6cd84cac00286bee0000000043410411db93e1dcdb8a016b49840f8c53bc1eb68a382e97b1482ecad7b148a6909a5cb2e0eaddfb84ccf9744464f82e160bfa9b8b64f9d4c03f999b8643f656b412a3ac00000000"
	block170TxID  = "f4184fc596403b9d638783cf57adfe4c75c605f6356fbc91338530e9831e9e16"
	block170Prev  = "0437cd7f8525ceed2324359c2d0ba26006d92d856a9c20fa0241106ee5a597c9"
)

func TestFromHex_KnownTransaction(t *testing.T) {
	parsed, err := FromHex(block170TxHex)
	require.NoError(t, err)

	assert.Equal(t, int32(1), parsed.Version)
	assert.Equal(t, uint32(0), parsed.LockTime)
	require.Len(t, parsed.Inputs, 1)
	require.Len(t, parsed.Outputs, 2)

	in := parsed.Inputs[0]
	assert.Equal(t, block170Prev, in.PrevTxIDHex())
	assert.Equal(t, uint32(0), in.PrevIndex)
	assert.Equal(t, uint32(DefaultSequence), in.Sequence)
	assert.False(t, in.IsCoinbase())

	assert.Equal(t, int64(1_000_000_000), parsed.Outputs[0].Satoshis)
	assert.Equal(t, int64(4_000_000_000), parsed.Outputs[1].Satoshis)
}

func TestTxID_KnownTransaction(t *testing.T) {
	parsed, err := FromHex(block170TxHex)
	require.NoError(t, err)

	assert.Equal(t, block170TxID, parsed.TxID())
	// Deterministic across calls.
	assert.Equal(t, parsed.TxID(), parsed.TxID())
}

func TestSerialize_Roundtrip(t *testing.T) {
	raw, err := hex.DecodeString(block170TxHex)
	require.NoError(t, err)

	parsed, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.Serialize())
	assert.Equal(t, block170TxHex, parsed.Hex())
	assert.Equal(t, len(raw), parsed.Size())
}

func TestBuildTransaction(t *testing.T) {
	prev, err := ParseTxIDHex(block170TxID)
	require.NoError(t, err)

	built := New()
	built.AddInput(prev, 1)
	built.AddOutput(5000, bytes.Repeat([]byte{0x51}, 25))
	built.AddOutput(0, []byte{0x00, 0x6a, 0x04, 0x74, 0x65, 0x73, 0x74})

	assert.Equal(t, len(built.Serialize()), built.Size())

	reparsed, err := FromBytes(built.Serialize())
	require.NoError(t, err)
	assert.Equal(t, built.TxID(), reparsed.TxID())
	assert.Equal(t, block170TxID, reparsed.Inputs[0].PrevTxIDHex())
	assert.Equal(t, uint32(1), reparsed.Inputs[0].PrevIndex)
	assert.Equal(t, int64(5000), reparsed.Outputs[0].Satoshis)
	assert.Equal(t, int64(0), reparsed.Outputs[1].Satoshis)
}

func TestIsCoinbase(t *testing.T) {
	coinbase := New()
	coinbase.AddInput([32]byte{}, 0xffffffff)
	assert.True(t, coinbase.Inputs[0].IsCoinbase())

	regular := New()
	var nonNull [32]byte
	nonNull[0] = 0x01
	regular.AddInput(nonNull, 0xffffffff)
	assert.False(t, regular.Inputs[0].IsCoinbase())

	regular2 := New()
	regular2.AddInput([32]byte{}, 0)
	assert.False(t, regular2.Inputs[0].IsCoinbase())
}

func TestFromBytes_Truncated(t *testing.T) {
	raw, err := hex.DecodeString(block170TxHex)
	require.NoError(t, err)

	// Every strict prefix must fail, never panic or succeed.
	for _, cut := range []int{0, 3, 4, 5, 40, 41, 80, len(raw) - 1} {
		_, err := FromBytes(raw[:cut])
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestFromHex_Invalid(t *testing.T) {
	_, err := FromHex("not hex at all")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestFromHex_OversizedLengthPrefixes(t *testing.T) {
	// Declared counts and script lengths far beyond the actual data
	// must be rejected without allocating for them.
	tests := []struct {
		name string
		in   string
	}{
		{"input count", "01000000" + "ffffffffffffffffff"},
		{"output count", "01000000" + "00" + "ffffffffffffffffff"},
		{
			"unlocking script length",
			"01000000" + "01" +
				"0000000000000000000000000000000000000000000000000000000000000000" +
				"00000000" + "ffffffffffffffffff",
		},
		{
			"locking script length",
			"01000000" + "00" + "01" +
				"0000000000000000" + "ffffffffffffffffff",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromHex(tt.in)
			require.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestParseTxIDHex(t *testing.T) {
	internal, err := ParseTxIDHex(block170TxID)
	require.NoError(t, err)

	// Internal order is the reverse of display order.
	display, _ := hex.DecodeString(block170TxID)
	for i := 0; i < 32; i++ {
		assert.Equal(t, display[31-i], internal[i])
	}

	_, err = ParseTxIDHex("zz")
	require.ErrorIs(t, err, ErrInvalidHex)

	_, err = ParseTxIDHex("abcd")
	require.ErrorIs(t, err, ErrInvalidHex)
}
