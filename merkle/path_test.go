package merkle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspv/walletengine-go/keys"
	"github.com/openspv/walletengine-go/tx"
)

// leafHash derives a deterministic 32-byte internal-order hash for tests.
func leafHash(label string) []byte {
	sum := sha256.Sum256([]byte(label))
	return sum[:]
}

func displayHex(internal []byte) string {
	return hex.EncodeToString(reverse(internal))
}

// encodeNode appends one compact path node.
func encodeNode(buf []byte, offset uint64, flags byte, internalHash []byte) []byte {
	buf = tx.AppendVarInt(buf, offset)
	buf = append(buf, flags)
	if flags&flagDuplicate == 0 {
		buf = append(buf, internalHash...)
	}
	return buf
}

// fourLeafPath builds the compact path proving leaf 1 of a 4-leaf block.
func fourLeafPath(t *testing.T, height uint32, leaves [][]byte) []byte {
	t.Helper()
	require.Len(t, leaves, 4)

	right := keys.Sha256d(append(append([]byte{}, leaves[2]...), leaves[3]...))

	buf := binary.LittleEndian.AppendUint32(nil, height)
	buf = append(buf, 2) // tree height

	// Leaf level: the target and its sibling.
	buf = tx.AppendVarInt(buf, 2)
	buf = encodeNode(buf, 0, 0, leaves[0])
	buf = encodeNode(buf, 1, flagTxID, leaves[1])

	// Level 1: the sibling subtree hash.
	buf = tx.AppendVarInt(buf, 1)
	buf = encodeNode(buf, 1, 0, right)
	return buf
}

func TestParsePath(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	raw := fourLeafPath(t, 850000, leaves)

	p, err := ParsePath(raw)
	require.NoError(t, err)

	assert.Equal(t, uint32(850000), p.BlockHeight)
	require.Len(t, p.Levels, 2)
	require.Len(t, p.Levels[0], 2)
	require.Len(t, p.Levels[1], 1)

	assert.Equal(t, uint64(0), p.Levels[0][0].Offset)
	assert.False(t, p.Levels[0][0].TxID)
	assert.Equal(t, displayHex(leaves[0]), p.Levels[0][0].Hash)

	assert.Equal(t, uint64(1), p.Levels[0][1].Offset)
	assert.True(t, p.Levels[0][1].TxID)
	assert.Equal(t, displayHex(leaves[1]), p.Levels[0][1].Hash)
}

func TestParsePathHex(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	raw := fourLeafPath(t, 1, leaves)

	p, err := ParsePathHex(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.BlockHeight)

	_, err = ParsePathHex("zzzz")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestParsePath_Truncated(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	raw := fourLeafPath(t, 1, leaves)

	for _, cut := range []int{0, 4, 6, 8, 20, len(raw) - 1} {
		_, err := ParsePath(raw[:cut])
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestParsePath_OversizedNodeCount(t *testing.T) {
	// A declared node count far beyond the actual data must be rejected
	// without allocating for it.
	_, err := ParsePathHex("01000000" + "01" + "ffffffffffffffffff")
	require.ErrorIs(t, err, ErrTruncated)
}

func TestComputeRoot_MatchesFullTree(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	expected, err := ComputeMerkleRootFromLeaves(leaves)
	require.NoError(t, err)

	p, err := ParsePath(fourLeafPath(t, 42, leaves))
	require.NoError(t, err)

	// From the txid-flagged node.
	root, err := p.ComputeRoot("")
	require.NoError(t, err)
	assert.Equal(t, displayHex(expected), root)

	// From a caller-supplied txid.
	root, err = p.ComputeRoot(displayHex(leaves[1]))
	require.NoError(t, err)
	assert.Equal(t, displayHex(expected), root)
}

func TestComputeRoot_OddLeafDuplication(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c")}
	expected, err := ComputeMerkleRootFromLeaves(leaves)
	require.NoError(t, err)

	// Path proving leaf 2 of a 3-leaf block: its sibling at offset 3 is a
	// duplicate node, the level-1 sibling is hash(L0||L1).
	left := keys.Sha256d(append(append([]byte{}, leaves[0]...), leaves[1]...))

	buf := binary.LittleEndian.AppendUint32(nil, 7)
	buf = append(buf, 2)
	buf = tx.AppendVarInt(buf, 2)
	buf = encodeNode(buf, 2, flagTxID, leaves[2])
	buf = encodeNode(buf, 3, flagDuplicate, nil)
	buf = tx.AppendVarInt(buf, 1)
	buf = encodeNode(buf, 0, 0, left)

	p, err := ParsePath(buf)
	require.NoError(t, err)

	root, err := p.ComputeRoot("")
	require.NoError(t, err)
	assert.Equal(t, displayHex(expected), root)
}

func TestComputeRoot_MissingSiblingActsAsDuplicate(t *testing.T) {
	// Same 3-leaf proof but the duplicate node is simply absent.
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c")}
	expected, err := ComputeMerkleRootFromLeaves(leaves)
	require.NoError(t, err)

	left := keys.Sha256d(append(append([]byte{}, leaves[0]...), leaves[1]...))

	buf := binary.LittleEndian.AppendUint32(nil, 7)
	buf = append(buf, 2)
	buf = tx.AppendVarInt(buf, 1)
	buf = encodeNode(buf, 2, flagTxID, leaves[2])
	buf = tx.AppendVarInt(buf, 1)
	buf = encodeNode(buf, 0, 0, left)

	p, err := ParsePath(buf)
	require.NoError(t, err)

	root, err := p.ComputeRoot("")
	require.NoError(t, err)
	assert.Equal(t, displayHex(expected), root)
}

func TestComputeRoot_Errors(t *testing.T) {
	empty := &Path{}
	_, err := empty.ComputeRoot("")
	require.ErrorIs(t, err, ErrEmptyPath)

	// Leaf level without a txid-flagged node and no caller txid.
	p := &Path{Levels: [][]PathNode{{{Offset: 0, Hash: displayHex(leafHash("a"))}}}}
	_, err = p.ComputeRoot("")
	require.ErrorIs(t, err, ErrNoTxIDNode)

	_, err = p.ComputeRoot("nothex")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestVerifyPath(t *testing.T) {
	leaves := [][]byte{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	expected, err := ComputeMerkleRootFromLeaves(leaves)
	require.NoError(t, err)

	p, err := ParsePath(fourLeafPath(t, 42, leaves))
	require.NoError(t, err)

	ok, err := VerifyPath(displayHex(leaves[1]), p, displayHex(expected))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPath(displayHex(leaves[1]), p, displayHex(leafHash("wrong")))
	require.NoError(t, err)
	assert.False(t, ok)
}
