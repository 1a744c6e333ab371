package merkle

import "errors"

var (
	// ErrTruncated indicates the compact path ended mid-structure.
	ErrTruncated = errors.New("merkle: unexpected end of path data")

	// ErrInvalidHex indicates the path hex could not be decoded.
	ErrInvalidHex = errors.New("merkle: invalid path hex")

	// ErrEmptyPath indicates a path with no levels.
	ErrEmptyPath = errors.New("merkle: empty path")

	// ErrNoTxIDNode indicates the leaf level has no txid-flagged node and
	// no txid was supplied by the caller.
	ErrNoTxIDNode = errors.New("merkle: no txid node found in leaf level")

	// ErrEmptyLeaves indicates a root computation over zero leaves.
	ErrEmptyLeaves = errors.New("merkle: cannot compute root of empty leaf list")
)
