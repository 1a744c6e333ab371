package tx

import "errors"

var (
	// ErrTruncated indicates the byte stream ended mid-structure.
	ErrTruncated = errors.New("tx: unexpected end of stream")

	// ErrInvalidHex indicates the transaction hex could not be decoded.
	ErrInvalidHex = errors.New("tx: invalid transaction hex")
)
