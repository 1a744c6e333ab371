// Package merkle parses and verifies BRC-71 compact Merkle paths, the
// per-transaction inclusion proofs attached to mined-status callbacks.
package merkle

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/openspv/walletengine-go/keys"
	"github.com/openspv/walletengine-go/tx"
)

// Node flag bits.
const (
	flagDuplicate = 0x01
	flagTxID      = 0x02
)

// PathNode is one entry at one tree level.
//
// Hash is in display (reversed) hex and empty for duplicate nodes, which
// stand in for the odd-leaf duplication of their sibling.
type PathNode struct {
	Offset    uint64
	Hash      string
	TxID      bool
	Duplicate bool
}

// Path is a BRC-71 Merkle path: one node list per tree level, leaf level
// first. Derived data, consumed once per confirmation event.
type Path struct {
	BlockHeight uint32
	Levels      [][]PathNode
}

// ParsePath decodes the compact binary layout: 4-byte LE block height,
// 1-byte tree height, then per level a varint node count and per node a
// varint offset, a flag byte, and a 32-byte reversed hash unless the
// duplicate flag is set.
func ParsePath(data []byte) (*Path, error) {
	r := bytes.NewReader(data)

	var head [5]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncated)
	}
	p := &Path{BlockHeight: binary.LittleEndian.Uint32(head[:4])}
	treeHeight := int(head[4])

	for level := 0; level < treeHeight; level++ {
		count, err := tx.ReadVarInt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: level %d node count", ErrTruncated, level)
		}
		// Each node occupies at least 2 bytes, so a count beyond the
		// remaining data is malformed. Checking before make keeps
		// hostile counts from allocating.
		if count > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: level %d node count %d exceeds remaining data", ErrTruncated, level, count)
		}
		nodes := make([]PathNode, 0, count)
		for i := uint64(0); i < count; i++ {
			offset, err := tx.ReadVarInt(r)
			if err != nil {
				return nil, fmt.Errorf("%w: level %d node offset", ErrTruncated, level)
			}
			var flags [1]byte
			if _, err := io.ReadFull(r, flags[:]); err != nil {
				return nil, fmt.Errorf("%w: level %d node flags", ErrTruncated, level)
			}

			node := PathNode{Offset: offset}
			if flags[0]&flagDuplicate != 0 {
				node.Duplicate = true
			} else {
				var hash [32]byte
				if _, err := io.ReadFull(r, hash[:]); err != nil {
					return nil, fmt.Errorf("%w: level %d node hash", ErrTruncated, level)
				}
				node.Hash = hex.EncodeToString(reverse(hash[:]))
				node.TxID = flags[0]&flagTxID != 0
			}
			nodes = append(nodes, node)
		}
		p.Levels = append(p.Levels, nodes)
	}

	return p, nil
}

// ParsePathHex decodes a hex-encoded compact path.
func ParsePathHex(s string) (*Path, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return ParsePath(raw)
}

// ComputeRoot walks the path bottom-up and returns the Merkle root in
// display hex. The starting leaf is the txid argument when non-empty,
// otherwise the leaf level's txid-flagged node.
//
// At each level the sibling sits at offset XOR 1; a duplicate or absent
// sibling reuses the working hash (odd-leaf duplication). The lower
// offset is the left half of the double-SHA256 input.
func (p *Path) ComputeRoot(txid string) (string, error) {
	if len(p.Levels) == 0 {
		return "", ErrEmptyPath
	}

	working, offset, err := p.findLeaf(txid)
	if err != nil {
		return "", err
	}

	for _, level := range p.Levels {
		sibling := siblingHash(level, offset^1, working)

		combined := make([]byte, 0, 64)
		if offset%2 == 0 {
			combined = append(combined, working...)
			combined = append(combined, sibling...)
		} else {
			combined = append(combined, sibling...)
			combined = append(combined, working...)
		}
		working = keys.Sha256d(combined)
		offset /= 2
	}

	return hex.EncodeToString(reverse(working)), nil
}

// findLeaf returns the starting hash (internal order) and leaf offset.
func (p *Path) findLeaf(txid string) ([]byte, uint64, error) {
	if txid != "" {
		raw, err := hex.DecodeString(txid)
		if err != nil || len(raw) != 32 {
			return nil, 0, fmt.Errorf("%w: txid %q", ErrInvalidHex, txid)
		}
		for _, node := range p.Levels[0] {
			if node.TxID || node.Hash == txid {
				return reverse(raw), node.Offset, nil
			}
		}
		// Not flagged in the path; assume the leftmost position.
		return reverse(raw), 0, nil
	}

	for _, node := range p.Levels[0] {
		if node.TxID {
			raw, err := hex.DecodeString(node.Hash)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: leaf hash %q", ErrInvalidHex, node.Hash)
			}
			return reverse(raw), node.Offset, nil
		}
	}
	return nil, 0, ErrNoTxIDNode
}

// siblingHash returns the hash at offset within level, in internal order.
// Duplicate and missing nodes resolve to current.
func siblingHash(level []PathNode, offset uint64, current []byte) []byte {
	for _, node := range level {
		if node.Offset != offset {
			continue
		}
		if node.Duplicate {
			return current
		}
		raw, err := hex.DecodeString(node.Hash)
		if err != nil || len(raw) != 32 {
			return current
		}
		return reverse(raw)
	}
	return current
}

// VerifyPath recomputes the root for txid and compares it to
// expectedRoot (display hex).
func VerifyPath(txid string, p *Path, expectedRoot string) (bool, error) {
	computed, err := p.ComputeRoot(txid)
	if err != nil {
		return false, err
	}
	return computed == expectedRoot, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
