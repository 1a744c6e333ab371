package script

import "errors"

var (
	// ErrInvalidPubKeyHash indicates a pubkey hash that is not 20 bytes.
	ErrInvalidPubKeyHash = errors.New("script: pubkey hash must be 20 bytes")
)
